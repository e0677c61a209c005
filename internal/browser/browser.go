// Package browser opens posting links in the platform's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/matheuskafuri/jobradar/internal/job"
)

// launch starts the platform opener; tests replace it.
var launch = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open launches rawURL. Only absolute http and https URLs are accepted, the
// same rule postings are stored under.
func Open(rawURL string) error {
	if err := job.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}
	name, args := command(runtime.GOOS, rawURL)
	return launch(name, args...)
}

func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd's shell interpretation of the URL
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
