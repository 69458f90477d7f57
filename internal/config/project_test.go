package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

func TestProjectConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &model.ProjectConfig{
		SiteID:       "site_1",
		Domain:       "blog",
		BuildCommand: "npm run build",
		BuildDir:     "dist",
	}

	if err := SaveProject(dir, want); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	got, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("project config mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectConfig_Missing(t *testing.T) {
	_, err := LoadProject(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestProjectConfig_MalformedTreatedAsMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadProject(dir)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
