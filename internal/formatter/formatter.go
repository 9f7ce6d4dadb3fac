package formatter

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// ErrInvalidBorder is returned by ParseBorder for unknown border names.
var ErrInvalidBorder = errors.New("invalid border")

var (
	defaultHeaderFG    = lipgloss.Color("12")
	defaultKeyColor    = lipgloss.Color("14")
	defaultValueColor  = lipgloss.Color("248")
	defaultSeparator   = lipgloss.Color("240")
	defaultMarkerColor = lipgloss.Color("244")
	defaultNullColor   = lipgloss.Color("141")
	defaultTitleColor  = lipgloss.Color("223")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	markerStyle    lipgloss.Style
	nullStyle      lipgloss.Style
	titleStyle     lipgloss.Style
)

// TableColors controls the rendered colors. Nil fields fall back to the
// defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	MarkerColor    color.Color
	NullColor      color.Color
	TitleColor     color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

func applyTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.HeaderFG, defaultHeaderFG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
	markerStyle = lipgloss.NewStyle().Italic(true).Foreground(orDefault(tc.MarkerColor, defaultMarkerColor))
	nullStyle = lipgloss.NewStyle().Foreground(orDefault(tc.NullColor, defaultNullColor))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.TitleColor, defaultTitleColor))
}

// SetTableTheme overrides the global table styles. Callers can pass zero-valued
// fields to fall back to formatter defaults.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Options controls how tables are drawn.
type Options struct {
	// Border is one of rounded (default), normal, thick, double, ascii,
	// hidden or none.
	Border  string `yaml:"border"`
	NoColor *bool  `yaml:"noColor"`
	// MaxStringLength truncates leaf cell text by display width; 0 disables.
	MaxStringLength *int `yaml:"maxStringLength"`
	// Width caps the outer table width; 0 means unconstrained.
	Width *int `yaml:"width"`
}

// Merge returns o with every field set in override applied. Nil pointers
// and an empty border are unset.
func (o Options) Merge(override Options) Options {
	if override.Border != "" {
		o.Border = override.Border
	}
	if override.NoColor != nil {
		o.NoColor = override.NoColor
	}
	if override.MaxStringLength != nil {
		o.MaxStringLength = override.MaxStringLength
	}
	if override.Width != nil {
		o.Width = override.Width
	}
	return o
}

// colorDisabled reports whether output is drawn without ANSI styling.
func (o Options) colorDisabled() bool { return o.NoColor != nil && *o.NoColor }

func (o Options) stringLimit() int {
	if o.MaxStringLength == nil {
		return 0
	}
	return *o.MaxStringLength
}

func (o Options) tableWidth() int {
	if o.Width == nil {
		return 0
	}
	return *o.Width
}

// ParseBorder validates a border name.
func ParseBorder(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := borders[n]; !ok && n != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBorder, name)
	}
	return n, nil
}

var borders = map[string]func() lipgloss.Border{
	"rounded": lipgloss.RoundedBorder,
	"normal":  lipgloss.NormalBorder,
	"thick":   lipgloss.ThickBorder,
	"double":  lipgloss.DoubleBorder,
	"ascii":   lipgloss.ASCIIBorder,
	"hidden":  lipgloss.HiddenBorder,
	"none":    lipgloss.HiddenBorder,
}

func borderFor(name string) lipgloss.Border {
	if b, ok := borders[strings.ToLower(name)]; ok {
		return b()
	}
	return lipgloss.RoundedBorder()
}

// Stringify returns the single-line display text of a leaf value.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return escapeScalarString(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case []byte:
		return fmt.Sprintf("[% x]", t)
	case error:
		return escapeScalarString(t.Error())
	case fmt.Stringer:
		return escapeScalarString(t.String())
	default:
		return escapeScalarString(fmt.Sprint(v))
	}
}

// escapeScalarString flattens control characters in scalar strings so table rows stay single-line.
func escapeScalarString(s string) string {
	return normalizeScalarString(s, true)
}

// normalizeScalarString prepares scalar strings for display. When escapeNewlines is true, newline
// characters are rendered as literal "\\n" so table rows stay single-line.
func normalizeScalarString(s string, escapeNewlines bool) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if escapeNewlines && strings.Contains(s, "\n") {
		s = strings.ReplaceAll(s, "\n", "\\n")
	}
	return strings.ReplaceAll(s, "\t", "  ")
}

// truncate shortens s to maxLen display columns, ending with an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 2 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "…")
}

// TerminalWidth returns the width of stdout, or 0 when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
