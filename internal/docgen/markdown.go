package docgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// EnvVar documents one environment variable in the reference.
type EnvVar struct {
	Name        string
	Description string
}

// RenderMarkdown writes a markdown reference document from a JSON Schema.
// It walks the $defs, rendering one section per type with a table of
// fields, then an "Environment" section listing vars (if any).
func RenderMarkdown(w io.Writer, s *jsonschema.Schema, vars []EnvVar) error {
	title := s.Title
	if title == "" {
		title = "Configuration Reference"
	}
	p := &printer{w: w}
	p.printf("# %s\n\n", title)
	if s.Description != "" {
		p.printf("%s\n\n", s.Description)
	}
	p.printf("> **Auto-generated**, do not edit. Run `go run ./cmd/genschema` to regenerate.\n\n")

	for _, name := range defNames(s) {
		def := s.Definitions[name]
		if def == nil || def.Properties == nil {
			continue
		}
		p.printf("## %s\n\n", name)
		if def.Description != "" {
			p.printf("%s\n\n", def.Description)
		}

		reqSet := make(map[string]bool)
		for _, r := range def.Required {
			reqSet[r] = true
		}
		p.printf("| Field | Type | Required | Default | Description |\n")
		p.printf("|-------|------|----------|---------|-------------|\n")
		for pair := def.Properties.Oldest(); pair != nil; pair = pair.Next() {
			req := ""
			if reqSet[pair.Key] {
				req = "**yes**"
			}
			p.printf("| `%s` | %s | %s | %s | %s |\n",
				pair.Key, schemaTypeString(pair.Value), req,
				formatDefault(pair.Value), formatDescription(pair.Value))
		}
		p.printf("\n")
	}

	if len(vars) > 0 {
		p.printf("## Environment\n\n")
		p.printf("| Variable | Description |\n")
		p.printf("|----------|-------------|\n")
		for _, v := range vars {
			p.printf("| `%s` | %s |\n", v.Name, cell(v.Description))
		}
		p.printf("\n")
	}
	return p.err
}

// printer remembers the first write error so rendering reads straight.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// defNames returns the $defs keys sorted, with the root type (the target
// of the top-level $ref, e.g. "#/$defs/File") first.
func defNames(s *jsonschema.Schema) []string {
	rootName := ""
	if s.Ref != "" {
		rootName = refName(s.Ref)
	}
	var names []string
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == rootName {
			return true
		}
		if names[j] == rootName {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

// WriteMarkdown generates a markdown file from a schema using atomic write.
func WriteMarkdown(path string, s *jsonschema.Schema, vars []EnvVar) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".genschema-md-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := RenderMarkdown(tmp, s, vars); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// schemaTypeString returns a human-readable type string for a property.
func schemaTypeString(prop *jsonschema.Schema) string {
	if prop.Ref != "" {
		return refName(prop.Ref)
	}
	switch prop.Type {
	case "array":
		if prop.Items == nil {
			return "array"
		}
		if prop.Items.Ref != "" {
			return "[]" + refName(prop.Items.Ref)
		}
		return "[]" + prop.Items.Type
	case "object":
		val := prop.AdditionalProperties
		if val == nil {
			return "object"
		}
		if val.Ref != "" {
			return "map[string]" + refName(val.Ref)
		}
		return "map[string]" + val.Type
	case "":
		return "any"
	default:
		return prop.Type
	}
}

// refName extracts the type name from a $ref path like "#/$defs/Restart".
func refName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

// formatDefault returns the default value as a string, or empty.
func formatDefault(prop *jsonschema.Schema) string {
	if prop.Default != nil {
		return fmt.Sprintf("`%v`", prop.Default)
	}
	return ""
}

// formatDescription returns the description, appending enum values if present.
func formatDescription(prop *jsonschema.Schema) string {
	desc := prop.Description
	if len(prop.Enum) > 0 {
		vals := make([]string, len(prop.Enum))
		for i, v := range prop.Enum {
			vals[i] = fmt.Sprintf("`%v`", v)
		}
		enumStr := "Enum: " + strings.Join(vals, ", ")
		if desc != "" {
			desc += " " + enumStr
		} else {
			desc = enumStr
		}
	}
	return cell(desc)
}

// cell makes text safe for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
