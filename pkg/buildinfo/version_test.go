package buildinfo

import (
	"strings"
	"testing"
)

func TestApplication(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "dev"
	if got := Application(); got != "procsheet" {
		t.Errorf("Application() = %q", got)
	}
	Version = "v1.2.0"
	if got := Application(); got != "procsheet v1.2.0" {
		t.Errorf("Application() = %q", got)
	}
}

func TestStringAndTemplate(t *testing.T) {
	if s := String(); !strings.Contains(s, "version: "+Version) || !strings.Contains(s, "commit: "+Commit) {
		t.Errorf("String() = %q", s)
	}
	if tpl := Template(); !strings.HasPrefix(tpl, "{{.Name}} ") {
		t.Errorf("Template() = %q", tpl)
	}
}
