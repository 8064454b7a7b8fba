package consolekit

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies the four field shapes of the structured-message schema.
type Kind string

const (
	// KindScalar is a single input bound to one FieldPrefix.
	KindScalar Kind = "scalar"

	// KindEmbedded is a collapsed sub-object fetched on first expand.
	KindEmbedded Kind = "embedded"

	// KindRepeated is a list of entries indexed by frozen slots.
	KindRepeated Kind = "repeated"

	// KindOneOf is a field whose sub-form is one of a fixed set of options.
	KindOneOf Kind = "oneof"
)

// Field describes one field of the schema tree mirrored by a form.
type Field struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Label   string   `yaml:"label,omitempty"`
	Type    string   `yaml:"type,omitempty"` // scalar: string, bool or enum
	Enum    []string `yaml:"enum,omitempty"`
	Default string   `yaml:"default,omitempty"`
	Fields  []Field  `yaml:"fields,omitempty"`  // embedded sub-object or repeated entry
	Options []Option `yaml:"options,omitempty"` // oneof alternatives
}

// Option is one alternative of a one-of field.
type Option struct {
	Name   string  `yaml:"name"`
	Label  string  `yaml:"label,omitempty"`
	Fields []Field `yaml:"fields,omitempty"`
}

// Schema is a named tree of fields, usually loaded from YAML mirroring the
// server-defined structured-message schema.
type Schema struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// ParseSchema unmarshals and validates a YAML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural rules: non-empty unique sibling names, no
// PathSep or count suffix inside names (they would break prefix boundaries),
// children only where the kind allows them, and one-of defaults naming a
// real option.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema: missing name")
	}
	return validateFields(s.Name, s.Fields)
}

func validateFields(where string, fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("schema %s: no fields", where)
	}
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if err := validateName(where, f.Name); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", where, f.Name)
		}
		seen[f.Name] = true

		at := where + "." + f.Name
		switch f.Kind {
		case KindScalar:
			if len(f.Fields) > 0 || len(f.Options) > 0 {
				return fmt.Errorf("schema %s: scalar field has children", at)
			}
			switch f.Type {
			case "", "string", "bool":
			case "enum":
				if len(f.Enum) == 0 {
					return fmt.Errorf("schema %s: enum field has no values", at)
				}
			default:
				return fmt.Errorf("schema %s: unknown scalar type %q", at, f.Type)
			}
		case KindEmbedded, KindRepeated:
			if len(f.Options) > 0 {
				return fmt.Errorf("schema %s: %s field has options", at, f.Kind)
			}
			if err := validateFields(at, f.Fields); err != nil {
				return err
			}
		case KindOneOf:
			if len(f.Fields) > 0 {
				return fmt.Errorf("schema %s: oneof field has direct children", at)
			}
			if len(f.Options) == 0 {
				return fmt.Errorf("schema %s: oneof field has no options", at)
			}
			optSeen := make(map[string]bool, len(f.Options))
			for j := range f.Options {
				o := &f.Options[j]
				if err := validateName(at, o.Name); err != nil {
					return err
				}
				if optSeen[o.Name] {
					return fmt.Errorf("schema %s: duplicate option %q", at, o.Name)
				}
				optSeen[o.Name] = true
				if err := validateFields(at+"."+o.Name, o.Fields); err != nil {
					return err
				}
			}
			if f.Default != "" && !optSeen[f.Default] {
				return fmt.Errorf("schema %s: default option %q does not exist", at, f.Default)
			}
		default:
			return fmt.Errorf("schema %s: unknown kind %q", at, f.Kind)
		}
	}
	return nil
}

func validateName(where, name string) error {
	if name == "" {
		return fmt.Errorf("schema %s: empty name", where)
	}
	if strings.Contains(name, PathSep) {
		return fmt.Errorf("schema %s: name %q contains %q", where, name, PathSep)
	}
	if strings.HasSuffix(name, countSuffix) {
		return fmt.Errorf("schema %s: name %q collides with the count key suffix", where, name)
	}
	return nil
}

// DefaultOption returns the initially selected option of a one-of field:
// the declared default, or the first option.
func (f *Field) DefaultOption() string {
	if f.Kind != KindOneOf || len(f.Options) == 0 {
		return ""
	}
	if f.Default != "" {
		return f.Default
	}
	return f.Options[0].Name
}

// OptionByName returns the named option of a one-of field.
func (f *Field) OptionByName(name string) (*Option, bool) {
	for i := range f.Options {
		if f.Options[i].Name == name {
			return &f.Options[i], true
		}
	}
	return nil, false
}

// Resolve walks a FieldPrefix back to its field descriptor. Numeric
// segments select repeated entries and option-name segments descend into
// one-of alternatives, mirroring how prefixes are constructed.
func (s *Schema) Resolve(prefix string) (*Field, bool) {
	segs := strings.Split(prefix, PathSep)
	fields := s.Fields
	var cur *Field

	for i := 0; i < len(segs); i++ {
		seg := segs[i]

		if cur != nil {
			switch cur.Kind {
			case KindRepeated:
				if _, err := strconv.Atoi(seg); err == nil {
					// Index segment; stay on the repeated field's entry
					// scope and let the next segment pick the entry field.
					fields = cur.Fields
					cur = nil
					continue
				}
			case KindOneOf:
				if opt, ok := cur.OptionByName(seg); ok {
					fields = opt.Fields
					cur = nil
					continue
				}
			}
		}

		next := fieldByName(fields, seg)
		if next == nil {
			return nil, false
		}
		cur = next
		fields = next.Fields
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func fieldByName(fields []Field, name string) *Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}
