package core

import (
	"reflect"
	"time"

	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// Handler substitutes a value before it is classified. It receives the raw
// value, its static type (the dynamic type when none is known) and the
// member provider in use. Returning false leaves the value unchanged.
type Handler func(v any, t reflect.Type, members descriptor.MemberProvider) (any, bool)

type matcher struct {
	match  func(reflect.Type) bool
	handle Handler
}

type handlers struct {
	byType   map[reflect.Type]Handler
	matchers []matcher
}

func (h *handlers) exact(t reflect.Type, fn Handler) {
	if t == nil || fn == nil {
		return
	}
	if h.byType == nil {
		h.byType = map[reflect.Type]Handler{}
	}
	h.byType[t] = fn
}

func (h *handlers) matching(match func(reflect.Type) bool, fn Handler) {
	if match == nil || fn == nil {
		return
	}
	h.matchers = append(h.matchers, matcher{match: match, handle: fn})
}

// lookup returns the handler for dynamic type t, or nil.
func (h *handlers) lookup(t reflect.Type) Handler {
	if fn, ok := h.byType[t]; ok {
		return fn
	}
	for _, m := range h.matchers {
		if m.match(t) {
			return m.handle
		}
	}
	return nil
}

var errorType = reflect.TypeFor[error]()

// registerDefaultHandlers adds handlers for well-known leaf types. User
// handlers registered earlier for the same type win.
func registerDefaultHandlers(h *handlers) {
	defaults := map[reflect.Type]Handler{
		reflect.TypeFor[time.Time](): func(v any, _ reflect.Type, _ descriptor.MemberProvider) (any, bool) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, false
			}
			return t.Format(time.RFC3339Nano), true
		},
		reflect.TypeFor[time.Duration](): func(v any, _ reflect.Type, _ descriptor.MemberProvider) (any, bool) {
			d, ok := v.(time.Duration)
			if !ok {
				return nil, false
			}
			return d.String(), true
		},
	}
	for t, fn := range defaults {
		if _, ok := h.byType[t]; !ok {
			h.exact(t, fn)
		}
	}

	// Errors with exported fields would otherwise be drawn as objects.
	h.matching(func(t reflect.Type) bool { return t.Implements(errorType) }, func(v any, _ reflect.Type, _ descriptor.MemberProvider) (any, bool) {
		err, ok := v.(error)
		if !ok {
			return nil, false
		}
		return err.Error(), true
	})
}
