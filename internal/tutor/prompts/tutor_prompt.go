package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/tutor_prompt.txt
var tutorSystemPrompt string

// RenderTutorSystem renders the tutor persona system prompt for the given
// teaching language. An empty language falls back to defaultLanguage.
func RenderTutorSystem(ctx context.Context, targetLanguage, defaultLanguage string) (string, error) {
	lang := strings.TrimSpace(targetLanguage)
	if lang == "" {
		lang = defaultLanguage
	}

	// Render via the Eino prompt component (Go template) to both format and
	// emit callbacks.
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(tutorSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"TargetLanguage": lang,
	})
	if err != nil {
		return "", fmt.Errorf("tutor prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("tutor prompt render: empty result")
	}
	return msgs[0].Content, nil
}
