package page

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/google/go-cmp/cmp"
)

var configBlock = regexp.MustCompile(`(?s)<script type="application/json" id="radar-config">(.*?)</script>`)

func testSite() config.Site {
	return config.Site{
		Title:     "example.org",
		BaseURL:   "https://example.org/",
		ScriptURL: "/radar.js",
		Intro:     "Still   setting this up.",
	}
}

func render(t *testing.T, p Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderEmbedsVisualization(t *testing.T) {
	v := radar.Build(radar.DefaultLayout(), []content.Record{
		{Title: "Rust", Slug: "/rust/", Quadrant: "language", Ring: "adopt"},
		{Title: "<script>alert(1)</script>", Slug: "/xss/", Quadrant: "framework", Ring: "hold", Moved: "up"},
	})
	html := render(t, New(testSite(), v))

	m := configBlock.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("radar config block not found in:\n%s", html)
	}
	if strings.Contains(m[1], "<script>") {
		t.Errorf("entry label was not escaped: %s", m[1])
	}

	var got radar.Visualization
	if err := json.Unmarshal([]byte(m[1]), &got); err != nil {
		t.Fatalf("config block is not JSON: %v\n%s", err, m[1])
	}
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("embedded visualization mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPageChrome(t *testing.T) {
	html := render(t, New(testSite(), radar.NewVisualization(radar.DefaultLayout(), nil)))

	for _, want := range []string{
		`<svg id="radar"></svg>`,
		`<script src="/radar.js"></script>`,
		`<title>Tech Radar | example.org</title>`,
		`<a href="https://example.org/">example.org</a>`,
		`<meta name="description" content="Still setting this up.">`,
		"radar_visualization(",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestNewHomeURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://example.org", "https://example.org/"},
		{"https://example.org/", "https://example.org/"},
		{"", "/"},
	}
	for _, tt := range tests {
		p := New(config.Site{BaseURL: tt.base}, radar.Visualization{})
		if p.HomeURL != tt.want {
			t.Errorf("New(base=%q).HomeURL = %q, want %q", tt.base, p.HomeURL, tt.want)
		}
	}
}
