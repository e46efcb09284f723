package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// start launches the platform opener; replaced in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return start("open", rawURL)
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return start("xdg-open", rawURL)
	}
}

// Resolve turns a radar entry link into an absolute URL on the site.
// Absolute links are returned unchanged.
func Resolve(baseURL, link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	if ref.IsAbs() {
		return link
	}
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil || baseURL == "" {
		return link
	}
	// Slugs are site-relative even without a leading slash.
	ref.Path = "/" + strings.TrimPrefix(ref.Path, "/")
	return base.ResolveReference(ref).String()
}
