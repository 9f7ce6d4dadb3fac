// Package loader decodes the documents dumpx renders from the command line.
// JSON, newline-delimited JSON, YAML (single or multi-document) and TOML are
// supported, either detected from the content or chosen explicitly.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyInput is returned when there is nothing to decode.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnknownFormat is returned by ParseFormat for unsupported names.
	ErrUnknownFormat = errors.New("unknown input format")
)

// Format names an input encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// ParseFormat validates a format name. An empty name means FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case "jsonl":
		return FormatNDJSON, nil
	case "yml":
		return FormatYAML, nil
	case FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension, returning
// FormatAuto when the extension is not recognized.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

// Load decodes every document in data. With FormatAuto the format is
// detected from the content.
func Load(data []byte, format Format) ([]any, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return nil, ErrEmptyInput
	}

	switch format {
	case FormatJSON:
		return loadJSON(input)
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatYAML:
		return loadYAML(input)
	case FormatTOML:
		return loadTOML(input)
	case FormatAuto, "":
		return detect(input)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Detect returns the format Load would pick for input in auto mode.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	looksJSON := strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[")
	switch {
	case looksJSON && json.Valid([]byte(input)):
		return FormatJSON
	case strings.Contains(input, "\n---") || strings.HasPrefix(input, "---"):
		return FormatYAML
	case isLikelyNDJSON(strings.Split(input, "\n")):
		return FormatNDJSON
	// TOML section headers look like JSON arrays, so check TOML first.
	case isLikelyTOML(input):
		return FormatTOML
	case looksJSON:
		return FormatJSON
	default:
		return FormatYAML
	}
}

func detect(input string) ([]any, error) {
	switch Detect(input) {
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatTOML:
		docs, err := loadTOML(input)
		if err == nil {
			return docs, nil
		}
		// A one-line JSON array of strings looks like a TOML header.
		if yamlDocs, yerr := loadYAML(input); yerr == nil {
			return yamlDocs, nil
		}
		return nil, err
	case FormatJSON:
		docs, err := loadJSON(input)
		if err == nil {
			return docs, nil
		}
		// "{a: 1}" is a YAML flow mapping but not JSON.
		if yamlDocs, yerr := loadYAML(input); yerr == nil {
			return yamlDocs, nil
		}
		return nil, err
	default:
		return loadYAML(input)
	}
}

// LoadRoot decodes data into one root value. Multi-document inputs become a
// slice of documents.
func LoadRoot(data []byte, format Format) (any, error) {
	docs, err := Load(data, format)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return docs, nil
}

// LoadRootBytes decodes data into one root value, detecting the format.
func LoadRootBytes(data []byte) (any, error) {
	return LoadRoot(data, FormatAuto)
}

// LoadReader reads r fully and decodes it into one root value.
func LoadReader(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return LoadRoot(data, format)
}

// LoadFileWithLogger reads a file and decodes it into one root value. The
// extension selects the format; if decoding with it fails the content is
// decoded again with detection.
func LoadFileWithLogger(path string, lgr logr.Logger) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}

	format := FormatFromPath(path)
	if format == FormatAuto {
		lgr.V(1).Info("detecting input format", "path", path, "format", Detect(string(data)))
		return LoadRoot(data, FormatAuto)
	}

	root, err := LoadRoot(data, format)
	if err == nil {
		return root, nil
	}
	lgr.V(1).Info("extension format failed, detecting", "path", path, "format", format, "error", err.Error())
	root, derr := LoadRoot(data, FormatAuto)
	if derr != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// LoadFile is LoadFileWithLogger without logging.
func LoadFile(path string) (any, error) {
	return LoadFileWithLogger(path, logr.Discard())
}

func loadJSON(input string) ([]any, error) {
	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []any{data}, nil
}

// loadYAML decodes one or more documents separated by "---". Empty
// documents are skipped.
func loadYAML(input string) ([]any, error) {
	var docs []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("invalid YAML: %w", ErrEmptyInput)
	}
	return docs, nil
}

// loadNDJSON decodes one JSON value per line. Lines that are not JSON are
// kept as plain strings.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	docs := make([]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{data}, nil
}

// isLikelyNDJSON requires several non-empty lines, most of them starting
// like a JSON object or array. YAML lists ("- name") do not qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]
	tomlSection = regexp.MustCompile(`^\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}$`)
	// name = "value", database.host = "localhost"
	tomlKeyValue = regexp.MustCompile(`^(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML looks for unindented section headers, or for key = value
// lines making up most of the input.
func isLikelyTOML(input string) bool {
	sections, keyValues, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		indented := line != strings.TrimLeft(line, " \t")
		if !indented && tomlSection.MatchString(trimmed) {
			sections++
		}
		if tomlKeyValue.MatchString(trimmed) {
			keyValues++
		}
	}
	return sections > 0 || (nonEmpty > 0 && keyValues > nonEmpty/2)
}
