package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateKind is the closed set of visual layouts a resume can be rendered
// with. The string values are the selectors clients already send.
type TemplateKind string

const (
	TemplatePrimary   TemplateKind = "modern"
	TemplateSecondary TemplateKind = "classic"
	TemplateTwoColumn TemplateKind = "hybrid"
)

// Templates lists every layout in a stable order.
var Templates = []TemplateKind{TemplatePrimary, TemplateSecondary, TemplateTwoColumn}

var templateAliases = map[string]TemplateKind{
	"modern":     TemplatePrimary,
	"primary":    TemplatePrimary,
	"classic":    TemplateSecondary,
	"secondary":  TemplateSecondary,
	"hybrid":     TemplateTwoColumn,
	"two-column": TemplateTwoColumn,
}

// ParseTemplate resolves a selector to a TemplateKind. Unknown selectors are
// rejected with ErrInvalidTemplate.
func ParseTemplate(s string) (TemplateKind, error) {
	if k, ok := templateAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", &PipelineError{Kind: KindInvalidTemplate, State: "Idle", Cause: fmt.Errorf("unknown template %q", s)}
}

// ZeroMargin reports whether the layout manages its own page padding.
func (k TemplateKind) ZeroMargin() bool { return k == TemplateTwoColumn }

// ViewMode controls how blank fields are treated.
type ViewMode string

const (
	// ModeDraft replaces blank fields with catalog examples.
	ModeDraft ViewMode = "draft"
	// ModeFinal omits blank fields and collapses empty sections.
	ModeFinal ViewMode = "final"
)

// ParseViewMode resolves a mode string, falling back to def when blank.
func ParseViewMode(s string, def ViewMode) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "draft", "preview":
		return ModeDraft, nil
	case "final", "export":
		return ModeFinal, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// InjectStrategy selects how the controller gets content into the page.
type InjectStrategy string

const (
	// InjectContent sets the assembled document as the page content.
	InjectContent InjectStrategy = "content"
	// InjectRoute preloads the snapshot into page storage and navigates to
	// the print route, which renders itself.
	InjectRoute InjectStrategy = "route"
)

// RenderJob is the per-request unit of work. It is discarded once the PDF
// bytes have been handed back.
type RenderJob struct {
	ID        uuid.UUID
	Template  TemplateKind
	Mode      ViewMode
	Strategy  InjectStrategy
	CreatedAt time.Time
}

// NewRenderJob builds a job with a fresh ID.
func NewRenderJob(tpl TemplateKind, mode ViewMode) RenderJob {
	return RenderJob{
		ID:        uuid.New(),
		Template:  tpl,
		Mode:      mode,
		Strategy:  InjectContent,
		CreatedAt: time.Now(),
	}
}
