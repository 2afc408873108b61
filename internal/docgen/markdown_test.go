package docgen

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func renderConfig(t *testing.T, vars []EnvVar) string {
	t.Helper()
	s, err := GenerateConfigSchema()
	if err != nil {
		t.Fatalf("GenerateConfigSchema: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, s, vars); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty markdown output")
	}
	return buf.String()
}

func TestRenderMarkdownConfigSchema(t *testing.T) {
	md := renderConfig(t, nil)

	if !strings.HasPrefix(md, "# inirun Configuration\n") {
		t.Errorf("missing title: %q", md[:40])
	}
	for _, section := range []string{"## File", "## Restart"} {
		if !strings.Contains(md, section) {
			t.Errorf("missing section %q", section)
		}
	}
	if strings.Index(md, "## File") > strings.Index(md, "## Restart") {
		t.Error("File section should come before Restart section")
	}
	if strings.Contains(md, "## Environment") {
		t.Error("Environment section rendered without vars")
	}
}

func TestRenderMarkdownTableFormat(t *testing.T) {
	md := renderConfig(t, []EnvVar{{Name: "X", Description: "a | b\nc"}})
	for _, line := range strings.Split(md, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		pipes := strings.Count(line, "|") - strings.Count(line, "\\|")
		if pipes != 6 && pipes != 3 {
			t.Errorf("table row has %d separators: %s", pipes, line)
		}
	}
}

func TestRenderMarkdownTypes(t *testing.T) {
	md := renderConfig(t, nil)
	for _, row := range []string{
		"| `extensions` | map[string]boolean |",
		"| `settings` | map[string]string |",
		"| `restart` | Restart |",
		"| `disabled` | boolean |",
	} {
		if !strings.Contains(md, row) {
			t.Errorf("missing row prefix %q", row)
		}
	}
}

func TestRenderMarkdownRequiredFields(t *testing.T) {
	s, err := GenerateSettingsSchema()
	if err != nil {
		t.Fatalf("GenerateSettingsSchema: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, s, nil); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "| `mode` | string | **yes**") {
		t.Error("Settings.mode not marked as required in markdown")
	}
}

func TestRenderMarkdownEnumValues(t *testing.T) {
	md := renderConfig(t, nil)
	if !strings.Contains(md, "`minimal`") || !strings.Contains(md, "`persistent`") || !strings.Contains(md, "`original`") {
		t.Error("restart mode enum values not shown in markdown")
	}
}

func TestRenderMarkdownEnvironment(t *testing.T) {
	md := renderConfig(t, []EnvVar{
		{Name: "INIRUNRC", Description: "Primary config file."},
		{Name: "INIRUN_NO_RESTART", Description: "Set to skip restarts."},
	})
	if !strings.Contains(md, "## Environment") {
		t.Fatal("missing Environment section")
	}
	if !strings.Contains(md, "| `INIRUNRC` | Primary config file. |") {
		t.Errorf("INIRUNRC row missing:\n%s", md)
	}
	if strings.Index(md, "## Restart") > strings.Index(md, "## Environment") {
		t.Error("Environment should come after the schema sections")
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestRenderMarkdownWriteError(t *testing.T) {
	s, err := GenerateConfigSchema()
	if err != nil {
		t.Fatal(err)
	}
	if err := RenderMarkdown(&failWriter{n: 2}, s, nil); err == nil || err.Error() != "disk full" {
		t.Errorf("err = %v, want disk full", err)
	}
}
