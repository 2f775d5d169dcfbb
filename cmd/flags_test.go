package cmd

import (
	"testing"

	"github.com/patchdev/upsearch/internal/output"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "upsearch" {
		t.Errorf("name = %q", app.Name)
	}
	for _, name := range []string{"find", "list"} {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestCommandsCarryCommonFlags(t *testing.T) {
	common := []string{"repo", "branch", "pattern", "remote", "search-tags", "message", "backend"}

	for _, cmd := range App().Commands {
		have := make(map[string]bool)
		for _, f := range cmd.Flags {
			for _, name := range f.Names() {
				have[name] = true
			}
		}
		for _, name := range common {
			if !have[name] {
				t.Errorf("%s: missing flag --%s", cmd.Name, name)
			}
		}
	}
}

func TestListCmdFlags(t *testing.T) {
	cmd := ListCmd()
	have := make(map[string]bool)
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			have[name] = true
		}
	}
	for _, name := range []string{"include-all", "merges", "no-merges", "reverse", "sha1-only", "format", "top", "output"} {
		if !have[name] {
			t.Errorf("missing flag --%s", name)
		}
	}
}

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"json", output.FormatJSON},
		{"csv", output.FormatCSV},
		{"console", output.FormatConsole},
		{"", output.FormatConsole},
		{"bogus", output.FormatConsole},
	}
	for _, tt := range tests {
		if got := getOutputFormat(tt.in); got != tt.want {
			t.Errorf("getOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
