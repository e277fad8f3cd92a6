// Package assemble turns a template's document tree into one self-contained
// printable HTML document: layered stylesheets, inlined fonts, A4 page
// geometry and the readiness mount point.
package assemble

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/layout"
	"resume-builder/internal/readiness"
)

//go:embed assets
var assets embed.FS

// Page geometry.
const (
	PageSize      = "A4"
	DefaultMargin = "12mm"
)

// Layer names, in cascade order. Later layers win.
const (
	LayerFonts      = "fonts"
	LayerPreview    = "preview"
	LayerTemplate   = "template"
	LayerPrint      = "print"
	LayerPrintFixes = "print-fixes"
)

var layerOrder = []string{LayerFonts, LayerPreview, LayerTemplate, LayerPrint, LayerPrintFixes}

var documentTmpl = template.Must(template.New("document").Parse(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<div id="%s" %s="false" data-template="{{.Template}}">{{.Body}}</div>
<script>{{.Script}}</script>
</body>
</html>
`, readiness.RootID, readiness.ReadyAttr)))

type documentData struct {
	Title    string
	CSS      template.CSS
	Template string
	Body     template.HTML
	Script   template.JS
}

// Fragment is the assembled output split into the parts the print route
// mounts itself.
type Fragment struct {
	Title string `json:"title"`
	CSS   string `json:"css"`
	HTML  string `json:"html"`
}

// Assembler is immutable after construction and safe for concurrent use.
type Assembler struct {
	fontCSS string
	sheets  map[string]string
}

// New loads the embedded stylesheets and fonts, plus any fonts found in
// fontsDir when it is not empty.
func New(fontsDir string, logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	embedded, err := fs.Sub(assets, "assets/fonts")
	if err != nil {
		return nil, fmt.Errorf("assemble: embedded fonts: %w", err)
	}
	sources := []fs.FS{embedded}
	if fontsDir != "" {
		sources = append(sources, os.DirFS(fontsDir))
	}
	fonts, err := LoadFonts(sources...)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if len(fonts) == 0 {
		logger.Info("assemble: no font files found, using system font stacks")
	} else {
		logger.Debug("assemble: fonts loaded", "count", len(fonts))
	}

	a := &Assembler{fontCSS: FontFaceCSS(fonts), sheets: map[string]string{}}
	names := []string{"preview", "print"}
	for _, k := range domain.Templates {
		names = append(names, string(k), string(k)+".print")
	}
	for _, n := range names {
		b, err := assets.ReadFile("assets/css/" + n + ".css")
		if err != nil {
			return nil, fmt.Errorf("assemble: stylesheet %s: %w", n, err)
		}
		a.sheets[n] = string(b)
	}
	return a, nil
}

// PageRule returns the @page rule for a template.
func PageRule(kind domain.TemplateKind) string {
	margin := DefaultMargin
	if kind.ZeroMargin() {
		margin = "0"
	}
	return fmt.Sprintf("@page { size: %s; margin: %s; }", PageSize, margin)
}

// Stylesheet returns every rule the template needs, layered in cascade
// order. Each layer starts with a /* layer: name */ marker.
func (a *Assembler) Stylesheet(kind domain.TemplateKind) string {
	layers := map[string]string{
		LayerFonts:      a.fontCSS,
		LayerPreview:    a.sheets["preview"],
		LayerTemplate:   a.sheets[string(kind)],
		LayerPrint:      PageRule(kind) + "\n" + a.sheets["print"],
		LayerPrintFixes: a.sheets[string(kind)+".print"],
	}
	var b strings.Builder
	for _, name := range layerOrder {
		fmt.Fprintf(&b, "/* layer: %s */\n%s\n", name, strings.TrimSpace(layers[name]))
	}
	return b.String()
}

// Title is the document title for a resume owner.
func Title(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Resume"
	}
	return name + " — Resume"
}

// Document assembles the complete printable document.
func (a *Assembler) Document(kind domain.TemplateKind, root *layout.Node, title string) ([]byte, error) {
	body, err := root.HTML()
	if err != nil {
		return nil, fmt.Errorf("assemble: serialise tree: %w", err)
	}
	var buf bytes.Buffer
	err = documentTmpl.Execute(&buf, documentData{
		Title:    title,
		CSS:      template.CSS(a.Stylesheet(kind)),
		Template: string(kind),
		Body:     template.HTML(body),
		Script:   template.JS(readiness.InlineScript),
	})
	if err != nil {
		return nil, fmt.Errorf("assemble: execute document: %w", err)
	}
	return buf.Bytes(), nil
}

// Fragment returns the pieces the print route injects into its shell.
func (a *Assembler) Fragment(kind domain.TemplateKind, root *layout.Node, title string) (Fragment, error) {
	body, err := root.HTML()
	if err != nil {
		return Fragment{}, fmt.Errorf("assemble: serialise tree: %w", err)
	}
	return Fragment{Title: title, CSS: a.Stylesheet(kind), HTML: string(body)}, nil
}

var shellTmpl = template.Must(template.New("shell").Parse(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Resume</title>
</head>
<body>
<div id="%s" %s="false"></div>
<script>{{.Script}}</script>
</body>
</html>
`, readiness.RootID, readiness.ReadyAttr)))

// PrintShell is the print route document. The mount point is present on
// first paint; the script fills it from the preloaded snapshot.
func PrintShell() ([]byte, error) {
	var buf bytes.Buffer
	err := shellTmpl.Execute(&buf, documentData{Script: template.JS(readiness.PrintRouteScript)})
	if err != nil {
		return nil, fmt.Errorf("assemble: execute shell: %w", err)
	}
	return buf.Bytes(), nil
}
