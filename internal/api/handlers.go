package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	"github.com/linguachat/tutor-core/internal/tutor/model"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

// TurnRelay is the relay surface the HTTP layer depends on.
type TurnRelay interface {
	RelayTurn(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
	WakeUp(ctx context.Context, channelID string) error
}

// Handler exposes the relay over HTTP. The state repository is optional;
// without it turns are not serialized and wakes are not deduplicated.
type Handler struct {
	relay TurnRelay
	state model.ChannelStateRepository
}

func NewHandler(relay TurnRelay, state model.ChannelStateRepository) *Handler {
	return &Handler{relay: relay, state: state}
}

// NewRouter assembles the relay service routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Health)

	tutorGroup := r.Group("/api/tutor")
	tutorGroup.POST("/chat", h.Chat)
	tutorGroup.POST("/wake", h.Wake)

	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Chat relays one tutoring turn.
func (h *Handler) Chat(c *gin.Context) {
	var in model.TurnInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	if h.state != nil && in.ChannelID != "" {
		ok, err := h.state.AcquireTurn(ctx, in.ChannelID)
		switch {
		case err != nil:
			// State store trouble must not take the tutor down; proceed
			// unguarded.
			logx.Warn().Err(err).Str("channelID", in.ChannelID).Msg("turn guard unavailable, proceeding unguarded")
		case !ok:
			c.JSON(http.StatusConflict, gin.H{"message": errx.ErrTurnInFlight.Error()})
			return
		default:
			defer func() {
				if err := h.state.ReleaseTurn(ctx, in.ChannelID); err != nil {
					logx.Warn().Err(err).Str("channelID", in.ChannelID).Msg("failed to release turn lock")
				}
			}()
		}
	}

	res, err := h.relay.RelayTurn(ctx, in)
	if err != nil {
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.Status, gin.H{"message": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI Tutor is currently sleeping."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": res.Reply})
}

type wakeRequest struct {
	ChannelID string `json:"channelId"`
}

// Wake cold-starts a channel: greet once, warm up in the background.
func (h *Handler) Wake(c *gin.Context) {
	var in wakeRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if in.ChannelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Channel ID required"})
		return
	}

	ctx := c.Request.Context()

	if h.state != nil {
		greeted, err := h.state.WasGreeted(ctx, in.ChannelID)
		switch {
		case err != nil:
			logx.Warn().Err(err).Str("channelID", in.ChannelID).Msg("greeted marker unavailable, greeting anyway")
		case greeted:
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
	}

	if err := h.relay.WakeUp(ctx, in.ChannelID); err != nil {
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.Status, gin.H{"message": appErr.Message})
			return
		}
		logx.Error().Err(err).Str("channelID", in.ChannelID).Msg("cold start failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Error"})
		return
	}

	// Record the greeting only once it actually reached the channel, so a
	// transient failure cannot suppress the welcome forever. Two racing
	// wakes may both greet; that is harmless.
	if h.state != nil {
		if _, err := h.state.MarkGreeted(ctx, in.ChannelID); err != nil {
			logx.Warn().Err(err).Str("channelID", in.ChannelID).Msg("failed to record greeted marker")
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
