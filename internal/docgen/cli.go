package docgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RenderCLIMarkdown writes a CLI reference by walking a cobra command tree.
// Hidden commands are skipped. startup holds the options parsed before
// the command name; they are rendered first as "Startup Options" and may
// be nil. Each command gets an H2 heading, synopsis, examples, a flags
// table and a subcommands table.
func RenderCLIMarkdown(w io.Writer, root *cobra.Command, startup *pflag.FlagSet) error {
	p := &printer{w: w}
	p.printf("# CLI Reference\n\n")
	p.printf("> **Auto-generated**, do not edit. Run `go run ./cmd/genschema` to regenerate.\n\n")

	if startup != nil {
		if flags := visibleFlags(startup); len(flags) > 0 {
			p.printf("## Startup Options\n\n")
			p.printf("Given before the command name. They steer the configuration search and the restart, and are parsed before any command runs.\n\n")
			writeFlagTable(p, flags)
		}
	}
	if flags := visibleFlags(root.PersistentFlags()); len(flags) > 0 {
		p.printf("## Global Flags\n\n")
		writeFlagTable(p, flags)
	}
	walkCommands(p, root)
	return p.err
}

// WriteCLIMarkdown writes the CLI reference to a file using atomic write.
func WriteCLIMarkdown(path string, root *cobra.Command, startup *pflag.FlagSet) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gencli-md-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := RenderCLIMarkdown(tmp, root, startup); err != nil {
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

func walkCommands(p *printer, cmd *cobra.Command) {
	renderCommand(p, cmd)
	for _, child := range cmd.Commands() {
		if !child.Hidden {
			walkCommands(p, child)
		}
	}
}

func renderCommand(p *printer, cmd *cobra.Command) {
	p.printf("## %s\n\n", cmd.CommandPath())

	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	if desc != "" {
		p.printf("%s\n\n", strings.TrimSpace(desc))
	}
	p.printf("```\n%s\n```\n\n", cmd.UseLine())
	if cmd.Example != "" {
		p.printf("**Example:**\n\n```\n%s\n```\n\n", strings.TrimSpace(cmd.Example))
	}
	if flags := visibleFlags(cmd.LocalNonPersistentFlags()); len(flags) > 0 {
		writeFlagTable(p, flags)
	}
	renderSubcommandsTable(p, cmd)
}

// flagInfo holds rendered flag metadata.
type flagInfo struct {
	Name    string
	Type    string
	Default string
	Desc    string
}

func visibleFlags(fs *pflag.FlagSet) []flagInfo {
	var flags []flagInfo
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			flags = append(flags, newFlagInfo(f))
		}
	})
	return flags
}

// newFlagInfo extracts display info from a pflag.Flag.
func newFlagInfo(f *pflag.Flag) flagInfo {
	name := "`--" + f.Name + "`"
	if f.Shorthand != "" {
		name = "`-" + f.Shorthand + "`, `--" + f.Name + "`"
	}
	defVal := ""
	if !isZeroDefault(f.DefValue, f.Value.Type()) {
		defVal = "`" + f.DefValue + "`"
	}
	return flagInfo{
		Name:    name,
		Type:    f.Value.Type(),
		Default: defVal,
		Desc:    cell(f.Usage),
	}
}

// isZeroDefault returns true if the default value is the zero value for its type.
func isZeroDefault(val, typ string) bool {
	switch typ {
	case "bool":
		return val == "false"
	case "int", "int32", "int64", "uint", "uint32", "uint64", "float32", "float64":
		return val == "0"
	case "stringSlice", "stringArray":
		return val == "[]"
	default:
		return val == ""
	}
}

func writeFlagTable(p *printer, flags []flagInfo) {
	p.printf("| Flag | Type | Default | Description |\n")
	p.printf("|------|------|---------|-------------|\n")
	for _, f := range flags {
		p.printf("| %s | %s | %s | %s |\n", f.Name, f.Type, f.Default, f.Desc)
	}
	p.printf("\n")
}

func renderSubcommandsTable(p *printer, cmd *cobra.Command) {
	var children []*cobra.Command
	for _, c := range cmd.Commands() {
		if !c.Hidden {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return
	}
	p.printf("| Subcommand | Description |\n")
	p.printf("|------------|-------------|\n")
	for _, c := range children {
		anchor := strings.ToLower(strings.ReplaceAll(c.CommandPath(), " ", "-"))
		p.printf("| [%s](#%s) | %s |\n", c.CommandPath(), anchor, c.Short)
	}
	p.printf("\n")
}
