package governance

import (
	"os"
	"path/filepath"
	"testing"

	"ChannelGovernor/internal/domain"
)

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	doc := "TechTips: force_promote\nOldCrafts: ignore_retire\nDailyVlog: banana\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	overrides, err := LoadOverrides(path, nil)
	if err != nil {
		t.Fatalf("LoadOverrides error: %v", err)
	}

	if len(overrides) != 2 {
		t.Fatalf("unknown directives must be skipped, got %v", overrides)
	}
	if overrides["TechTips"] != domain.OverrideForcePromote {
		t.Fatalf("unexpected TechTips override: %s", overrides["TechTips"])
	}
	if overrides["OldCrafts"] != domain.OverrideIgnoreRetire {
		t.Fatalf("unexpected OldCrafts override: %s", overrides["OldCrafts"])
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	t.Parallel()

	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err != nil {
		t.Fatalf("missing file means no overrides: %v", err)
	}
	if len(overrides) != 0 {
		t.Fatalf("expected empty map, got %v", overrides)
	}
}

func TestLoadOverridesMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadOverrides(path, nil); err == nil {
		t.Fatalf("malformed overrides must error, not silently drop operator intent")
	}
}
