package layout

import (
	"fmt"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/placeholder"
)

// RenderFunc builds the document tree for an already resolved snapshot.
type RenderFunc func(model.Resume) *Node

var renderers = map[domain.TemplateKind]RenderFunc{
	domain.TemplatePrimary:   renderPrimary,
	domain.TemplateSecondary: renderSecondary,
	domain.TemplateTwoColumn: renderTwoColumn,
}

// For returns the renderer bound to a template.
func For(kind domain.TemplateKind) (RenderFunc, error) {
	fn, ok := renderers[kind]
	if !ok {
		return nil, &domain.PipelineError{
			Kind:  domain.KindInvalidTemplate,
			State: "Idle",
			Cause: fmt.Errorf("no renderer for template %q", kind),
		}
	}
	return fn, nil
}

// Render resolves placeholders for mode and builds the template's tree. The
// input snapshot is left untouched.
func Render(kind domain.TemplateKind, r model.Resume, res *placeholder.Resolver, mode domain.ViewMode) (*Node, error) {
	fn, err := For(kind)
	if err != nil {
		return nil, err
	}
	root := fn(res.Resolve(r, mode))
	root.Set("data-template", string(kind)).Set("data-mode", string(mode))
	return root, nil
}
