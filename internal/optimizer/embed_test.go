package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmbed(t *testing.T) {
	mp4 := "https://res.example.com/v/clip.mp4"
	webm := "https://res.example.com/v/clip.webm"
	poster := "https://res.example.com/v/clip.jpg"

	out, err := RenderEmbed(mp4, webm, poster)
	require.NoError(t, err)

	assert.Contains(t, out, `<source src="`+webm+`" type="video/webm">`)
	assert.Contains(t, out, `<source src="`+mp4+`" type="video/mp4">`)
	assert.Contains(t, out, `poster="`+poster+`"`)

	// The snippet must be self-contained HTML with the hero wrapper.
	assert.Contains(t, out, `class="cinematic-hero"`)
	assert.Contains(t, out, "<style>")
}

func TestRenderEmbed_Deterministic(t *testing.T) {
	first, err := RenderEmbed("a", "b", "c")
	require.NoError(t, err)

	// Interleave other inputs to show there is no hidden state.
	_, err = RenderEmbed("x", "y", "z")
	require.NoError(t, err)

	second, err := RenderEmbed("a", "b", "c")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
