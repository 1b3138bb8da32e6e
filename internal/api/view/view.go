// Package view renders the HTML pages of the site. Templates are embedded in
// the binary; every page is parsed together with the shared layout and
// includes and executed through the "base" template.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

const (
	root       = "templates"
	layoutName = "base"
)

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page template. It fails when any template is malformed.
func New() (*Renderer, error) {
	shared, err := template.New(layoutName).
		Funcs(funcs).
		ParseFS(templateFS, root+"/base.html", root+"/includes/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, root+"/*/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimPrefix(f, root+"/")
		if path.Dir(name) == "includes" {
			continue
		}

		t, err := shared.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the named page, e.g. "posts/index.html".
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, layoutName, data)
}

// Has reports whether a page called name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"media":         mediaURL,
	"date":          formatDate,
	"truncatewords": truncateWords,
	"linebreaksbr":  lineBreaks,
}

func mediaURL(name string) string {
	return "/media/" + strings.TrimPrefix(name, "/")
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// truncateWords keeps the first n words, appending an ellipsis when text
// was cut.
func truncateWords(n int, text string) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + " …"
}

// lineBreaks escapes text and turns newlines into <br>.
func lineBreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
