// Package limiter bounds sequences for display. It keeps the head, the tail
// or both ends of a sequence and reports what was left out through markers
// that the table layouts render as placeholder rows or columns.
package limiter

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("invalid truncation mode")

// Mode controls which portion of a sequence is preserved.
type Mode string

const (
	// ModeHead keeps the first items.
	ModeHead Mode = "head"
	// ModeTail keeps the last items.
	ModeTail Mode = "tail"
	// ModeHeadAndTail keeps both ends and drops the middle. With an odd
	// budget the extra item goes to the head.
	ModeHeadAndTail Mode = "head_and_tail"
)

// ParseMode parses a mode name. Dashes and case are ignored.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")) {
	case ModeHead, "":
		return ModeHead, nil
	case ModeTail:
		return ModeTail, nil
	case ModeHeadAndTail, "headandtail", "head_tail":
		return ModeHeadAndTail, nil
	default:
		return "", fmt.Errorf("%w: %q (want head, tail or head_and_tail)", ErrInvalidMode, s)
	}
}

// Config holds the truncation parameters.
type Config struct {
	// MaxCount is the maximum number of kept items; nil means unlimited.
	MaxCount *int `yaml:"maxCount"`
	Mode     Mode `yaml:"mode"`
	// PerDimension truncates each axis of a multi-dimensional array
	// independently instead of only the outer one. Nil means false.
	PerDimension *bool `yaml:"perDimension"`
}

// Max returns a pointer to n, for use as Config.MaxCount.
func Max(n int) *int { return &n }

// Enabled returns a pointer to b, for use as Config.PerDimension.
func Enabled(b bool) *bool { return &b }

// IsPerDimension reports whether every axis is truncated.
func (c Config) IsPerDimension() bool {
	return c.PerDimension != nil && *c.PerDimension
}

// Merge returns c with every field set in override applied.
func (c Config) Merge(override Config) Config {
	if override.MaxCount != nil {
		c.MaxCount = override.MaxCount
	}
	if override.Mode != "" {
		c.Mode = override.Mode
	}
	if override.PerDimension != nil {
		c.PerDimension = override.PerDimension
	}
	return c
}

// IsActive returns true if a maximum count is configured.
func (c Config) IsActive() bool {
	return c.MaxCount != nil
}

// limit returns the clamped maximum count and whether one is set.
func (c Config) limit() (int, bool) {
	if c.MaxCount == nil {
		return 0, false
	}
	if *c.MaxCount < 0 {
		return 0, true
	}
	return *c.MaxCount, true
}

func (c Config) mode() Mode {
	if c.Mode == "" {
		return ModeHead
	}
	return c.Mode
}

// split returns how many items are kept from the front and from the back.
func (c Config) split(n int) (head, tail int) {
	switch c.mode() {
	case ModeTail:
		return 0, n
	case ModeHeadAndTail:
		return n - n/2, n / 2
	default:
		return n, 0
	}
}

// MarkerPosition tells where a marker sits relative to the kept items.
type MarkerPosition string

const (
	MarkerStart  MarkerPosition = "start"
	MarkerMiddle MarkerPosition = "middle"
	MarkerEnd    MarkerPosition = "end"
)

// Marker summarizes a run of omitted items.
type Marker struct {
	Position MarkerPosition
	// Omitted is the number of dropped items, or -1 when unknown.
	Omitted int
}

// Message returns the marker text used for marker rows.
func (m Marker) Message() string {
	switch {
	case m.Omitted < 0:
		return "... more items"
	case m.Omitted == 1:
		return "... 1 more item"
	default:
		return fmt.Sprintf("... %d more items", m.Omitted)
	}
}

// CompactMessage returns a short marker text for headers and index cells.
func (m Marker) CompactMessage() string {
	if m.Omitted < 0 {
		return "…"
	}
	return fmt.Sprintf("…%d", m.Omitted)
}

// Truncated is a bounded view over a sequence.
type Truncated[T any] struct {
	Items        []T
	StartMarker  *Marker
	MiddleMarker *Marker
	// MiddleMarkerIndex is the index of the item the middle marker is
	// inserted before. It is only meaningful when MiddleMarker is set.
	MiddleMarkerIndex int
	EndMarker         *Marker
	// TotalCount is the length of the source, or -1 when unknown.
	TotalCount int
}

// IsTruncated reports whether any item was dropped.
func (t Truncated[T]) IsTruncated() bool {
	return t.StartMarker != nil || t.MiddleMarker != nil || t.EndMarker != nil
}

// Len returns the number of kept items plus markers.
func (t Truncated[T]) Len() int {
	n := len(t.Items)
	for _, m := range []*Marker{t.StartMarker, t.MiddleMarker, t.EndMarker} {
		if m != nil {
			n++
		}
	}
	return n
}

// ForEach visits the kept items and the markers in display order.
func (t Truncated[T]) ForEach(onMarker func(Marker), onItem func(item T, index int)) {
	if t.StartMarker != nil {
		onMarker(*t.StartMarker)
	}
	for i, item := range t.Items {
		if t.MiddleMarker != nil && t.MiddleMarkerIndex == i {
			onMarker(*t.MiddleMarker)
		}
		onItem(item, i)
	}
	if t.EndMarker != nil {
		onMarker(*t.EndMarker)
	}
}

// Map converts the kept items of t with f, preserving the markers.
func Map[T, U any](t Truncated[T], f func(T) U) Truncated[U] {
	out := Truncated[U]{
		StartMarker:       t.StartMarker,
		MiddleMarker:      t.MiddleMarker,
		MiddleMarkerIndex: t.MiddleMarkerIndex,
		EndMarker:         t.EndMarker,
		TotalCount:        t.TotalCount,
	}
	if t.Items != nil {
		out.Items = make([]U, len(t.Items))
		for i, item := range t.Items {
			out.Items[i] = f(item)
		}
	}
	return out
}

// Truncate bounds a slice whose length is known.
func Truncate[T any](items []T, cfg Config) Truncated[T] {
	total := len(items)
	n, ok := cfg.limit()
	if !ok || n >= total {
		return Truncated[T]{Items: items, TotalCount: total}
	}

	head, tail := cfg.split(n)
	var kept []T
	switch {
	case tail == 0:
		kept = items[:head]
	case head == 0:
		kept = items[total-tail:]
	default:
		kept = make([]T, 0, head+tail)
		kept = append(kept, items[:head]...)
		kept = append(kept, items[total-tail:]...)
	}
	return bounded(kept, total, head, tail, cfg)
}

// bounded places the marker for the head and tail items kept out of total.
func bounded[T any](kept []T, total, head, tail int, cfg Config) Truncated[T] {
	out := Truncated[T]{Items: kept, TotalCount: total}
	omitted := total - head - tail
	switch {
	case cfg.mode() == ModeTail:
		out.StartMarker = &Marker{Position: MarkerStart, Omitted: omitted}
	case tail == 0:
		out.EndMarker = &Marker{Position: MarkerEnd, Omitted: omitted}
	default:
		out.MiddleMarker = &Marker{Position: MarkerMiddle, Omitted: omitted}
		out.MiddleMarkerIndex = head
	}
	return out
}

// TruncateSeq bounds a forward-only sequence. In head mode it reads at most
// one item past the limit, so it terminates on unbounded sequences; the end
// marker then reports an unknown omitted count. Tail modes consume the whole
// sequence but retain only the kept items.
func TruncateSeq[T any](seq iter.Seq[T], cfg Config) Truncated[T] {
	n, ok := cfg.limit()
	if !ok {
		var items []T
		for item := range seq {
			items = append(items, item)
		}
		return Truncated[T]{Items: items, TotalCount: len(items)}
	}

	head, tail := cfg.split(n)
	if cfg.mode() == ModeHead {
		return truncateSeqHead(seq, head)
	}
	return truncateSeqTail(seq, cfg, head, tail)
}

func truncateSeqHead[T any](seq iter.Seq[T], head int) Truncated[T] {
	items := make([]T, 0, head)
	overflow := false
	for item := range seq {
		if len(items) == head {
			overflow = true
			break
		}
		items = append(items, item)
	}
	if !overflow {
		return Truncated[T]{Items: items, TotalCount: len(items)}
	}
	return Truncated[T]{
		Items:      items,
		EndMarker:  &Marker{Position: MarkerEnd, Omitted: -1},
		TotalCount: -1,
	}
}

func truncateSeqTail[T any](seq iter.Seq[T], cfg Config, head, tail int) Truncated[T] {
	front := make([]T, 0, head)
	ring := make([]T, tail)
	total, filled, next := 0, 0, 0

	for item := range seq {
		total++
		if len(front) < head {
			front = append(front, item)
			continue
		}
		if tail == 0 {
			continue
		}
		ring[next] = item
		next = (next + 1) % tail
		if filled < tail {
			filled++
		}
	}

	back := make([]T, 0, filled)
	start := 0
	if filled == tail {
		start = next
	}
	for i := 0; i < filled; i++ {
		back = append(back, ring[(start+i)%tail])
	}

	omitted := total - len(front) - len(back)
	out := Truncated[T]{TotalCount: total}
	if omitted == 0 {
		out.Items = append(front, back...)
		return out
	}

	switch {
	case cfg.mode() == ModeTail:
		out.Items = back
		out.StartMarker = &Marker{Position: MarkerStart, Omitted: omitted}
	case tail == 0:
		out.Items = front
		out.EndMarker = &Marker{Position: MarkerEnd, Omitted: omitted}
	default:
		out.Items = append(front, back...)
		out.MiddleMarker = &Marker{Position: MarkerMiddle, Omitted: omitted}
		out.MiddleMarkerIndex = len(front)
	}
	return out
}

// TruncateRange bounds the index range [0, n). Only the kept indices are
// materialized.
func TruncateRange(n int, cfg Config) Truncated[int] {
	limit, ok := cfg.limit()
	if !ok || limit >= n {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return Truncated[int]{Items: indices, TotalCount: n}
	}

	head, tail := cfg.split(limit)
	kept := make([]int, 0, head+tail)
	for i := 0; i < head; i++ {
		kept = append(kept, i)
	}
	for i := n - tail; i < n; i++ {
		kept = append(kept, i)
	}
	return bounded(kept, n, head, tail, cfg)
}

// Grid holds the per-axis truncation of a two-dimensional source.
type Grid struct {
	Rows    Truncated[int]
	Columns Truncated[int]
}

// TruncateGrid truncates the row and column axes of a rows x cols grid
// independently. Without PerDimension only the rows are truncated.
func TruncateGrid(rows, cols int, cfg Config) Grid {
	g := Grid{Rows: TruncateRange(rows, cfg)}
	if cfg.IsPerDimension() {
		g.Columns = TruncateRange(cols, cfg)
	} else {
		g.Columns = TruncateRange(cols, Config{})
	}
	return g
}
