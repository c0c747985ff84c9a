package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTutorSystem(t *testing.T) {
	out, err := RenderTutorSystem(context.Background(), "Spanish", "English")

	require.NoError(t, err)
	require.Contains(t, out, "patient Spanish language tutor")
	require.Contains(t, out, "help the user learn Spanish")
	require.Contains(t, out, "SAFETY GUIDELINES")
}

func TestRenderTutorSystemDefaultsLanguage(t *testing.T) {
	for _, lang := range []string{"", "   "} {
		out, err := RenderTutorSystem(context.Background(), lang, "French")

		require.NoError(t, err)
		require.Contains(t, out, "patient French language tutor")
	}
}
