// Package views renders the analysis and how-it-works pages for the web
// shell and the plain-text verdict printed by the CLI.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"

	"alfredoptarigan/crypto-identifier/internal/models"
)

//go:embed templates/*.html content/*.md
var assets embed.FS

type Renderer struct {
	analysis   *template.Template
	howItWorks *template.Template
	howBody    template.HTML
}

type pageData struct {
	Title    string
	Theme    models.Theme
	Path     string
	Refresh  bool
	Analysis models.ViewModel
	Body     template.HTML
}

func NewRenderer() (*Renderer, error) {
	analysis, err := template.ParseFS(assets, "templates/layout.html", "templates/analysis.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis template: %w", err)
	}

	howItWorks, err := template.ParseFS(assets, "templates/layout.html", "templates/how_it_works.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse how-it-works template: %w", err)
	}

	source, err := assets.ReadFile("content/how_it_works.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read how-it-works copy: %w", err)
	}

	var body bytes.Buffer
	if err := goldmark.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to render how-it-works copy: %w", err)
	}

	return &Renderer{
		analysis:   analysis,
		howItWorks: howItWorks,
		// Embedded copy is trusted; goldmark drops raw HTML by default.
		howBody: template.HTML(body.String()),
	}, nil
}

// RenderAnalysis writes the analysis page. While a submission is in flight
// the page refreshes itself until the result settles.
func (r *Renderer) RenderAnalysis(w io.Writer, theme models.Theme, vm models.ViewModel) error {
	return r.analysis.ExecuteTemplate(w, "layout", pageData{
		Title:    "Cryptographic Algorithm Identifier",
		Theme:    theme,
		Path:     "/",
		Refresh:  vm.IsSubmitting(),
		Analysis: vm,
	})
}

func (r *Renderer) RenderHowItWorks(w io.Writer, theme models.Theme) error {
	return r.howItWorks.ExecuteTemplate(w, "layout", pageData{
		Title: "How It Works",
		Theme: theme,
		Path:  "/how-it-works",
		Body:  r.howBody,
	})
}
