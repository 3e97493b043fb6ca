package app

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/render"
)

const (
	templateRoot    = "templates"
	htmlContentType = "text/html; charset=utf-8"
)

// TemplateRenderer is gin's HTML renderer for the back-office pages.
//
// Every page under templates/ (for example "resource/list.html") is compiled
// on top of a shared base made of templates/layouts/*.html and
// templates/partials/*.html. Pages call {{ template "base" . }} and define
// the blocks the layout leaves open.
//
// In debug mode the set is rebuilt on every render so edits show up without
// a restart; otherwise it is built once by NewTemplateRenderer.
type TemplateRenderer struct {
	fs    fs.FS
	debug bool
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer reads templates from fsys, which must contain a
// templates/ directory (os.DirFS("web") or web.EmbeddedFS).
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fs: fsys, debug: debug}
	if debug {
		return r, nil
	}
	pages, err := compilePages(fsys)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.pages = pages
	return r, nil
}

// Instance implements render.HTMLRender. name is relative to templates/.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	pages := r.pages
	if r.debug {
		var err error
		if pages, err = compilePages(r.fs); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: pages[name], Name: name, Data: data}
}

func compilePages(fsys fs.FS) (map[string]*template.Template, error) {
	base := template.New("").Funcs(pageFuncs)
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		files, err := fs.Glob(fsys, path.Join(templateRoot, pattern))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if err := parseInto(base, fsys, f, f); err != nil {
				return nil, err
			}
		}
	}

	pageFiles, err := findPages(fsys)
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, f := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", f, err)
		}
		name := strings.TrimPrefix(f, templateRoot+"/")
		if err := parseInto(t, fsys, f, name); err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func parseInto(set *template.Template, fsys fs.FS, file, name string) error {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := set.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}

// findPages lists every .html file under templates/ except layouts and partials.
func findPages(fsys fs.FS) ([]string, error) {
	var pages []string
	err := fs.WalkDir(fsys, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == path.Join(templateRoot, "layouts") || p == path.Join(templateRoot, "partials") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	return pages, err
}

var pageFuncs = template.FuncMap{
	"sortMark":  sortMark,
	"thousands": thousands,
}

// sortMark is the arrow shown next to a sorted column header.
func sortMark(direction string) string {
	switch direction {
	case "asc":
		return "▲"
	case "desc":
		return "▼"
	}
	return ""
}

// thousands groups digits with commas: 1234567 -> "1,234,567".
func thousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

// HTMLInstance is one page execution returned by TemplateRenderer.Instance.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	if len(w.Header()["Content-Type"]) == 0 {
		w.Header()["Content-Type"] = []string{htmlContentType}
	}
}
