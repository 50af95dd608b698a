package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	tmpl := Template()
	for _, want := range []string{"{{.Name}}", Version, Commit, Date} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "mosaic/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
