package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	"github.com/linguachat/tutor-core/internal/tutor/model"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// RedisChannelStateRepository keeps per-channel tutor bookkeeping in Redis:
// a greeted marker so cold starts are not repeated, and an in-flight turn
// lock so rapid double messages do not race two tutor replies.
type RedisChannelStateRepository struct {
	rdb        redis.Cmdable
	greetedTTL time.Duration
	turnTTL    time.Duration
}

func NewRedisChannelStateRepository(rdb redis.Cmdable, greetedTTL, turnTTL time.Duration) *RedisChannelStateRepository {
	return &RedisChannelStateRepository{rdb: rdb, greetedTTL: greetedTTL, turnTTL: turnTTL}
}

func (r *RedisChannelStateRepository) greetedKey(channelID string) string {
	return fmt.Sprintf("channel:%s:greeted", channelID)
}

func (r *RedisChannelStateRepository) turnKey(channelID string) string {
	return fmt.Sprintf("channel:%s:turn", channelID)
}

func (r *RedisChannelStateRepository) WasGreeted(ctx context.Context, channelID string) (bool, error) {
	key := r.greetedKey(channelID)
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to read greeted marker")
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

func (r *RedisChannelStateRepository) MarkGreeted(ctx context.Context, channelID string) (bool, error) {
	key := r.greetedKey(channelID)
	first, err := r.rdb.SetNX(ctx, key, 1, r.greetedTTL).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to mark channel greeted")
		return false, errx.WrapRedis(err)
	}
	return first, nil
}

// AcquireTurn takes the channel's turn lock. The TTL bounds how long a
// crashed or hung turn can block the channel.
func (r *RedisChannelStateRepository) AcquireTurn(ctx context.Context, channelID string) (bool, error) {
	key := r.turnKey(channelID)
	ok, err := r.rdb.SetNX(ctx, key, 1, r.turnTTL).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to acquire turn lock")
		return false, errx.WrapRedis(err)
	}
	return ok, nil
}

func (r *RedisChannelStateRepository) ReleaseTurn(ctx context.Context, channelID string) error {
	key := r.turnKey(channelID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to release turn lock")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ChannelStateRepository = (*RedisChannelStateRepository)(nil)
