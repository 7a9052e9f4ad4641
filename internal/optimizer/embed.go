package optimizer

import (
	"fmt"
	"strings"
	"text/template"
)

// embedHTML is the landing-page background snippet handed back to customers.
// The WebM source comes first so modern browsers prefer the smaller file.
const embedHTML = `<!-- Cinematic Landing Page Video - Optimized by CinematicLandingPage.com -->
<div class="cinematic-hero" style="position: relative; width: 100%; height: 100vh; overflow: hidden;">
  <video
    style="
      position: absolute;
      top: 50%;
      left: 50%;
      min-width: 100%;
      min-height: 100%;
      width: auto;
      height: auto;
      transform: translate(-50%, -50%);
      object-fit: cover;
      z-index: -1;
    "
    autoplay
    muted
    loop
    playsinline
    preload="auto"
    poster="{{.PosterURL}}">
    <source src="{{.WebMURL}}" type="video/webm">
    <source src="{{.MP4URL}}" type="video/mp4">
    Your browser does not support the video tag.
  </video>

  <!-- Your content goes here -->
  <div style="position: relative; z-index: 1; padding: 2rem; color: white; text-align: center; display: flex; flex-direction: column; justify-content: center; height: 100vh;">
    <h1 style="font-size: 3rem; margin-bottom: 1rem;">Your Landing Page Headline</h1>
    <p style="font-size: 1.2rem; margin-bottom: 2rem;">Replace this with your actual content</p>
    <button style="background: #007cba; color: white; border: none; padding: 1rem 2rem; border-radius: 5px; font-size: 1.1rem; cursor: pointer;">Call to Action</button>
  </div>
</div>

<style>
/* Responsive adjustments */
@media (max-width: 768px) {
  .cinematic-hero {
    height: 60vh; /* Shorter on mobile to save bandwidth */
  }
  .cinematic-hero h1 {
    font-size: 2rem;
  }
}

/* Ensure video doesn't interfere with content */
.cinematic-hero video {
  pointer-events: none;
}
</style>

<!-- Performance: Video loads immediately for hero sections -->`

var embedTmpl = template.Must(template.New("embed").Parse(embedHTML))

// embedData parameterizes the embed snippet.
type embedData struct {
	MP4URL    string
	WebMURL   string
	PosterURL string
}

// RenderEmbed produces the HTML embed snippet for the three delivery URLs.
// It is a pure function: identical inputs yield byte-identical output.
func RenderEmbed(mp4URL, webmURL, posterURL string) (string, error) {
	var b strings.Builder
	if err := embedTmpl.Execute(&b, embedData{
		MP4URL:    mp4URL,
		WebMURL:   webmURL,
		PosterURL: posterURL,
	}); err != nil {
		return "", fmt.Errorf("optimizer: render embed snippet: %w", err)
	}
	return b.String(), nil
}
