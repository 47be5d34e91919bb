package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// GomponentToTemplAdapter lets a gomponents.Node be rendered wherever a
// templ.Component is expected.
type GomponentToTemplAdapter struct {
	Node gomponents.Node
}

// Render implements templ.Component. The context is not used by gomponents.
func (a *GomponentToTemplAdapter) Render(_ context.Context, w io.Writer) error {
	if a.Node == nil {
		return nil
	}
	return a.Node.Render(w)
}

// AdaptGomponentToTempl wraps node as a templ.Component.
func AdaptGomponentToTempl(node gomponents.Node) templ.Component {
	return &GomponentToTemplAdapter{Node: node}
}

// TemplToGomponentAdapter lets a templ.Component be embedded in a gomponents
// tree. gomponents does not pass a context, so Ctx is used when set and
// context.Background() otherwise.
type TemplToGomponentAdapter struct {
	Component templ.Component
	Ctx       context.Context
}

// Render implements gomponents.Node.
func (a *TemplToGomponentAdapter) Render(w io.Writer) error {
	ctx := a.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.Component.Render(ctx, w)
}

// AdaptTemplToGomponent wraps component as a gomponents.Node.
func AdaptTemplToGomponent(component templ.Component) gomponents.Node {
	return &TemplToGomponentAdapter{Component: component}
}
