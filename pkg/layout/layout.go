// Package layout decides how a value is laid out as a table. An ordered rule
// set picks a Layout and optional overrides for each value, and the chosen
// Strategy fills a table.Builder.
package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrInvalidLayout is returned by ParseLayout for unknown layout names.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout names a strategy.
type Layout string

const (
	// Vertical lists members (or items) as rows.
	Vertical Layout = "vertical"
	// Horizontal uses members as columns and items as rows.
	Horizontal Layout = "horizontal"
)

// ParseLayout parses a layout name case-insensitively. The empty string is
// returned unchanged and means "not set".
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case "", Vertical, Horizontal:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q (want vertical or horizontal)", ErrInvalidLayout, s)
	}
}

// Context is what a rule sees when deciding the layout of one value.
type Context struct {
	// Type is the classified type of the value. For collection tables it is
	// the element type and may be nil when elements are heterogeneous.
	Type reflect.Type
	// CurrentDepth is 0 for the root value and grows by one per nesting level.
	CurrentDepth        int
	IsCollectionElement bool
	ContainerType       reflect.Type
}

// Result is a rule's decision. Nil fields defer to the configuration and
// then to the strategy defaults.
type Result struct {
	Layout            Layout
	ShowRowIndices    *bool
	ShowMemberTypes   *bool
	ShowRowSeparators *bool
	ShowTableHeaders  *bool
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Use returns a result selecting l with no overrides.
func Use(l Layout) *Result {
	return &Result{Layout: l}
}

// WithRowIndices sets the row index override and returns r.
func (r *Result) WithRowIndices(show bool) *Result {
	r.ShowRowIndices = Bool(show)
	return r
}

// WithMemberTypes sets the member type override and returns r.
func (r *Result) WithMemberTypes(show bool) *Result {
	r.ShowMemberTypes = Bool(show)
	return r
}

// WithRowSeparators sets the row separator override and returns r.
func (r *Result) WithRowSeparators(show bool) *Result {
	r.ShowRowSeparators = Bool(show)
	return r
}

// WithTableHeaders sets the header override and returns r.
func (r *Result) WithTableHeaders(show bool) *Result {
	r.ShowTableHeaders = Bool(show)
	return r
}
