package forgekit

import (
	"strings"
	"testing"
)

func TestSemVer(t *testing.T) {
	v := SemVer()
	if v.Original() != Version {
		t.Errorf("SemVer() = %s, want %s", v.Original(), Version)
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.Contains(info, Name) || !strings.Contains(info, Version) {
		t.Errorf("Info() = %q, should mention name and version", info)
	}
}
