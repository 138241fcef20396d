package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if Semver() == nil {
		t.Errorf("default Version %q is not semantic", Version)
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	v := Semver()
	if v == nil || v.Major() != 1 || v.Minor() != 2 || v.Patch() != 3 {
		t.Fatalf("Semver() = %v, want 1.2.3", v)
	}

	Version = "not a version"
	if Semver() != nil {
		t.Error("malformed Version should not parse")
	}
	if got := Colored(); got != "not a version" {
		t.Errorf("Colored() = %q, want raw version", got)
	}
}

func TestVersion_Colored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()

	Version = "2.0.1-beta.1+abc"
	color.NoColor = true
	if got := Colored(); got != "2.0.1-beta.1+abc" {
		t.Errorf("Colored() without colour = %q", got)
	}

	color.NoColor = false
	got := Colored()
	if got == "2.0.1-beta.1+abc" {
		t.Error("Colored() with colour should add escape codes")
	}
}
