// Package config defines the on-disk YAML schema. The runtime
// configuration built from it lives in pkg/config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/dumpx/internal/formatter"
	"github.com/oakwood-commons/dumpx/pkg/descriptor"
)

// File is a configuration document.
type File struct {
	Table      Table             `yaml:"table"`
	Truncation Truncation        `yaml:"truncation"`
	MaxDepth   *int              `yaml:"maxDepth"`
	Members    *Members          `yaml:"members"`
	Render     formatter.Options `yaml:"render"`
}

// Table holds the layout defaults and rules.
type Table struct {
	Layout string `yaml:"layout"`
	Flags  `yaml:",inline"`
	Rules  []Rule `yaml:"rules"`
}

// Flags are the tri-state display switches shared by tables and rules.
type Flags struct {
	ShowRowIndices    *bool `yaml:"showRowIndices"`
	ShowMemberTypes   *bool `yaml:"showMemberTypes"`
	ShowRowSeparators *bool `yaml:"showRowSeparators"`
	ShowTableHeaders  *bool `yaml:"showTableHeaders"`
}

// Rule matches by type name, by CEL predicate, or both.
type Rule struct {
	// Type is a type name such as "main.Person". A collection table is
	// matched by its element type; use containerType in When to match the
	// collection itself.
	Type string `yaml:"type"`
	// When is a CEL expression over type, kind, depth, isCollectionElement,
	// containerType and containerKind.
	When   string `yaml:"when"`
	Layout string `yaml:"layout"`
	Flags  `yaml:",inline"`
}

// Members overrides individual member options. Unset fields keep the
// value they are applied to.
type Members struct {
	IncludeExported   *bool `yaml:"includeExported"`
	IncludeUnexported *bool `yaml:"includeUnexported"`
	IncludeFields     *bool `yaml:"includeFields"`
	IncludeMethods    *bool `yaml:"includeMethods"`
	IncludePromoted   *bool `yaml:"includePromoted"`
}

// Apply returns base with the set fields of m applied.
func (m *Members) Apply(base descriptor.MemberOptions) descriptor.MemberOptions {
	if m == nil {
		return base
	}
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.IncludeExported, m.IncludeExported)
	set(&base.IncludeUnexported, m.IncludeUnexported)
	set(&base.IncludeFields, m.IncludeFields)
	set(&base.IncludeMethods, m.IncludeMethods)
	set(&base.IncludePromoted, m.IncludePromoted)
	return base
}

// Truncation mirrors limiter.Config with names suited for YAML.
type Truncation struct {
	MaxCount     *int   `yaml:"maxCount"`
	Mode         string `yaml:"mode"`
	PerDimension *bool  `yaml:"perDimension"`
}

// Parse decodes a document. Unknown keys are rejected. An empty document
// yields a zero File.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode config: %w", err)
	}
	return f, nil
}
