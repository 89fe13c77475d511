package resources

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file (and parent dirs) with dummy content.
func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_DirectLayout(t *testing.T) {
	resourceDir := t.TempDir()
	dataDir := t.TempDir()

	rt := filepath.Join(resourceDir, "node", runtimeName())
	entry := filepath.Join(resourceDir, "server", "server.js")
	writeFile(t, rt)
	writeFile(t, entry)

	p := Resolve(resourceDir, dataDir, "", "")

	if p.Runtime != rt {
		t.Errorf("Runtime = %q, want %q", p.Runtime, rt)
	}
	if p.Entry != entry {
		t.Errorf("Entry = %q, want %q", p.Entry, entry)
	}
	if p.WorkDir != filepath.Dir(entry) {
		t.Errorf("WorkDir = %q, want entry dir", p.WorkDir)
	}
	if err := p.Verify(); err != nil {
		t.Errorf("Verify() = %v, want nil", err)
	}
}

func TestResolve_PrefixedLayout(t *testing.T) {
	resourceDir := t.TempDir()
	dataDir := t.TempDir()

	// Files nested under resources/ as some packagers lay them out.
	rt := filepath.Join(resourceDir, "resources", "node", runtimeName())
	entry := filepath.Join(resourceDir, "resources", "server", "server.js")
	writeFile(t, rt)
	writeFile(t, entry)

	p := Resolve(resourceDir, dataDir, "", "")

	if p.Runtime != rt {
		t.Errorf("Runtime = %q, want prefixed %q", p.Runtime, rt)
	}
	if p.Entry != entry {
		t.Errorf("Entry = %q, want prefixed %q", p.Entry, entry)
	}
}

func TestResolve_Overrides(t *testing.T) {
	dataDir := t.TempDir()
	rt := filepath.Join(t.TempDir(), "custom-node")
	entry := filepath.Join(t.TempDir(), "custom", "main.js")

	p := Resolve(t.TempDir(), dataDir, rt, entry)

	if p.Runtime != rt {
		t.Errorf("Runtime override ignored: %q", p.Runtime)
	}
	if p.Entry != entry {
		t.Errorf("Entry override ignored: %q", p.Entry)
	}
}

func TestResolve_DataArtifacts(t *testing.T) {
	dataDir := t.TempDir()
	p := Resolve(t.TempDir(), dataDir, "", "")

	for name, path := range map[string]string{
		"Database": p.Database,
		"EventLog": p.EventLog,
		"Output":   p.Output,
	} {
		if filepath.Dir(path) != dataDir {
			t.Errorf("%s = %q, want under %q", name, path, dataDir)
		}
	}
}

func TestVerify_MissingNamesFiles(t *testing.T) {
	resourceDir := t.TempDir()
	p := Resolve(resourceDir, t.TempDir(), "", "")

	err := p.Verify()
	if err == nil {
		t.Fatal("Verify() = nil, want missing-resource error")
	}

	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("error type %T, want *MissingError", err)
	}
	if len(missing.Files) != 2 {
		t.Errorf("missing %d files, want 2: %v", len(missing.Files), missing.Files)
	}
	if !strings.Contains(err.Error(), "server.js") {
		t.Errorf("error should name the entry script: %v", err)
	}
}

func TestVerify_OneMissing(t *testing.T) {
	resourceDir := t.TempDir()
	writeFile(t, filepath.Join(resourceDir, "node", runtimeName()))

	p := Resolve(resourceDir, t.TempDir(), "", "")

	var missing *MissingError
	if err := p.Verify(); !errors.As(err, &missing) {
		t.Fatalf("Verify() = %v, want *MissingError", err)
	} else if len(missing.Files) != 1 {
		t.Errorf("missing = %v, want just the entry script", missing.Files)
	}
}
