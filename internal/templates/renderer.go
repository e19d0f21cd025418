package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"sort"

	"github.com/jonathan/resume-builder/internal/docpath"
	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed layouts/*.html
var layoutFiles embed.FS

// Renderer draws a ContentDocument and reports which leaves it lets the
// user edit. Every editable leaf in the output carries a data-path
// attribute holding its JSON path.
type Renderer interface {
	Render(w io.Writer, in RenderInput) error
	Fields(doc types.ContentDocument) []Field
}

// RenderInput is everything a renderer draws
type RenderInput struct {
	Document types.ContentDocument
	// PhotoRef is a URL for the profile photo; empty hides it
	PhotoRef    string
	AccentColor string
}

// layout describes one built-in renderer
type layout struct {
	file string
	mode EditMode
}

// builtinLayouts maps layout names to their template files
var builtinLayouts = map[string]layout{
	"modern":       {file: "modern.html", mode: EditWholeArray},
	"professional": {file: "professional.html", mode: EditWholeArray},
	"creative":     {file: "creative.html", mode: EditWholeArray},
	"minimal":      {file: "minimal.html", mode: EditWholeArray},
	"minimal-pro":  {file: "minimal_pro.html", mode: EditWholeArray},
	"tech":         {file: "tech.html", mode: EditPerItem},
	"elegant-hr":   {file: "elegant_hr.html", mode: EditPerItem},
}

// Layouts returns the names of the built-in layouts
func Layouts() []string {
	names := make([]string, 0, len(builtinLayouts))
	for name := range builtinLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTMLRenderer renders one html/template layout
type HTMLRenderer struct {
	name string
	mode EditMode
	tmpl *template.Template
}

// NewLayoutRenderer parses the named built-in layout
func NewLayoutRenderer(name string) (*HTMLRenderer, error) {
	l, ok := builtinLayouts[name]
	if !ok {
		return nil, &TemplateError{Message: fmt.Sprintf("unknown layout %q", name)}
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"path":  pathAttr,
		"items": func() bool { return l.mode == EditPerItem },
	}).ParseFS(layoutFiles, "layouts/partials.html", "layouts/"+l.file)
	if err != nil {
		return nil, &TemplateError{Message: fmt.Sprintf("failed to parse layout %s", name), Cause: err}
	}

	return &HTMLRenderer{name: name, mode: l.mode, tmpl: tmpl}, nil
}

// Name returns the layout name
func (r *HTMLRenderer) Name() string {
	return r.name
}

// Mode returns the edit granularity of the layout
func (r *HTMLRenderer) Mode() EditMode {
	return r.mode
}

// Fields lists the leaves this layout marks as editable
func (r *HTMLRenderer) Fields(doc types.ContentDocument) []Field {
	return documentFields(doc, r.mode)
}

// pageData is the value passed to layouts
type pageData struct {
	Doc    types.ContentDocument
	Photo  template.URL
	Accent template.CSS
}

// inlinePhotoPattern matches base64 image data URIs produced for export
var inlinePhotoPattern = regexp.MustCompile(`^data:image/(?:png|jpeg|gif|webp);base64,[A-Za-z0-9+/]+={0,2}$`)

// photoURL admits relative, http(s) and inline image references. Anything
// else, including other data URIs, hides the photo.
func photoURL(ref string) template.URL {
	if ref == "" {
		return ""
	}
	if inlinePhotoPattern.MatchString(ref) {
		return template.URL(ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "", "http", "https":
		return template.URL(ref)
	}
	return ""
}

// Render writes the HTML for in.Document
func (r *HTMLRenderer) Render(w io.Writer, in RenderInput) error {
	accent := in.AccentColor
	if !accentColorPattern.MatchString(accent) {
		accent = "#4F46E5"
	}

	data := pageData{
		Doc:    in.Document.Normalized(),
		Photo:  photoURL(in.PhotoRef),
		Accent: template.CSS(accent),
	}
	if err := r.tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return &RenderError{Message: fmt.Sprintf("failed to execute layout %s", r.name), Cause: err}
	}
	return nil
}

// pathAttr renders path elements as the JSON used in data-path attributes
func pathAttr(elems ...any) string {
	return docpath.Path(elems).String()
}
