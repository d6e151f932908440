package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/util"
)

// pageRenderer renders the server-side HTML of each site page.
type pageRenderer struct {
	templates map[string]*template.Template
}

// pageData is the template input for a page.
type pageData struct {
	Name           string
	Page           content.Page
	Content        *content.Content
	PreloaderShown bool
	Version        string
	Year           int
}

var templateFuncs = template.FuncMap{
	"asset": func(src string) string {
		if src == "" || src[0] == '/' || hasScheme(src) {
			return src
		}
		return "/" + src
	},
	"add": func(a, b int) int { return a + b },
}

func hasScheme(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func newPageRenderer() (*pageRenderer, error) {
	files := embeddedFS("templates")
	r := &pageRenderer{templates: make(map[string]*template.Template)}
	for _, name := range []string{content.PageHome, content.PageRooms, content.PageExplore} {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(files, "layout.html", name+".html")
		if err != nil {
			return nil, util.WrapError("parse "+name+" template", err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// render writes the named page. Output is buffered so a template error
// never leaves a half-written page.
func (r *pageRenderer) render(w http.ResponseWriter, req *http.Request, name string, c *content.Content, preloaderShown bool) error {
	t, ok := r.templates[name]
	page, found := c.Page(name)
	if !ok || !found {
		http.NotFound(w, req)
		return fmt.Errorf("no page %q", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, pageData{
		Name:           name,
		Page:           page,
		Content:        c,
		PreloaderShown: preloaderShown,
		Version:        Version,
		Year:           time.Now().Year(),
	}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, err := io.Copy(w, &buf)
	return err
}
