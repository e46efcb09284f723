// Package page renders the host page around the radar chart.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
)

//go:embed radar.html.tmpl
var templateFS embed.FS

var radarTemplate = template.Must(template.ParseFS(templateFS, "radar.html.tmpl"))

const Title = "Tech Radar"

// Page is the data the radar template is executed with.
type Page struct {
	Title       string
	SiteTitle   string
	Description string
	Intro       string
	HomeURL     string
	ScriptURL   string
	Radar       radar.Visualization
}

// New builds a page for the given visualization from the site settings.
func New(site config.Site, v radar.Visualization) Page {
	home := strings.TrimSuffix(site.BaseURL, "/") + "/"
	return Page{
		Title:       Title,
		SiteTitle:   site.Title,
		Description: strings.Join(strings.Fields(site.Intro), " "),
		Intro:       site.Intro,
		HomeURL:     home,
		ScriptURL:   site.ScriptURL,
		Radar:       v,
	}
}

func Render(w io.Writer, p Page) error {
	if err := radarTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering radar page: %w", err)
	}
	return nil
}
