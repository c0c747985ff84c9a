package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	errx "github.com/linguachat/tutor-core/internal/core/error"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

const (
	chatPath     = "/api/chat"
	headerAPIKey = "x-api-key"

	// warmupPrompt is a throwaway message that forces the runtime to load the
	// model into memory.
	warmupPrompt = "warmup"

	// maxErrorBody caps how much of a failed response body is kept around.
	maxErrorBody = 2048
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client forwards single non-streaming completion requests to the model
// runtime through the credential gate. It performs no retries and no fallback
// messaging; failure policy lives with the caller.
type Client struct {
	cfg   Config
	httpc *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string            `json:"model"`
	Messages []*schema.Message `json:"messages"`
	Stream   bool              `json:"stream"`
}

type chatResponse struct {
	Message *schema.Message `json:"message"`
}

// ChatCompletion issues one completion round-trip with the given system
// instruction and user message and returns the completion text.
func (c *Client) ChatCompletion(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return c.complete(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userMessage),
	})
}

// Warmup issues a throwaway completion so the runtime loads the model ahead
// of the first real turn. The reply text is discarded.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.complete(ctx, []*schema.Message{
		schema.UserMessage(warmupPrompt),
	})
	return err
}

func (c *Client) complete(ctx context.Context, messages []*schema.Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.cfg.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Connection refused, DNS failure, client timeout: the runtime is
		// unreachable as far as the relay is concerned.
		return "", fmt.Errorf("%w: %v", errx.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &errx.BackendStatusError{
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", errx.ErrBackendProtocol, err)
	}
	if out.Message == nil || out.Message.Content == "" {
		return "", fmt.Errorf("%w: missing completion content", errx.ErrBackendProtocol)
	}

	logx.Debug().Int("chars", len(out.Message.Content)).Msg("completion received from model runtime")
	return out.Message.Content, nil
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
