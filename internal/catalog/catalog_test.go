package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"vk-compliment-bot/internal/models"
)

func TestDefaultHasPoolForEveryCategory(t *testing.T) {
	c := Default()
	if empty := c.EmptyPools(); len(empty) != 0 {
		t.Errorf("EmptyPools() = %v, want none", empty)
	}
}

func TestDefaultPoolsHaveNoDuplicates(t *testing.T) {
	c := Default()
	for _, category := range models.AllCategories() {
		seen := make(map[string]bool)
		for _, msg := range c.Pool(category) {
			if seen[msg] {
				t.Errorf("category %s has duplicate message %q", category, msg)
			}
			seen[msg] = true
		}
	}
}

func TestDefaultIsIsolated(t *testing.T) {
	a := Default()
	a.Compliments[models.CategoryTattoo][0] = "changed"
	a.Translations["tattoo"] = "changed"

	b := Default()
	if b.Compliments[models.CategoryTattoo][0] == "changed" {
		t.Error("Default() shares compliment slices between calls")
	}
	if b.Translations["tattoo"] == "changed" {
		t.Error("Default() shares translation map between calls")
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	c, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error = %v", err)
	}
	if c.DefaultCaption != defaultCaption {
		t.Errorf("DefaultCaption = %q, want %q", c.DefaultCaption, defaultCaption)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
keywords:
  appointment: ["ЗАПИСЬ ОТКРЫТА"]
compliments:
  weekly: ["one", "two"]
translations:
  Needle: игла
no_photo_message: "пусто"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := c.KeywordsFor(models.CategoryAppointment); !slices.Equal(got, []string{"запись открыта"}) {
		t.Errorf("appointment keywords = %v", got)
	}
	if got := c.Pool(models.CategoryWeekly); !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("weekly pool = %v", got)
	}
	if got := c.Pool(models.CategoryTattoo); len(got) != len(defaultCompliments[models.CategoryTattoo]) {
		t.Errorf("tattoo pool should keep defaults, got %d messages", len(got))
	}
	if c.Translations["needle"] != "игла" {
		t.Errorf("translation for needle = %q", c.Translations["needle"])
	}
	if c.Translations["tattoo"] != "татуировка" {
		t.Errorf("default translation lost: %q", c.Translations["tattoo"])
	}
	if c.NoPhotoMessage != "пусто" {
		t.Errorf("NoPhotoMessage = %q", c.NoPhotoMessage)
	}
	if c.FallbackMessage != defaultFallbackMessage {
		t.Errorf("FallbackMessage = %q", c.FallbackMessage)
	}
}

func TestLoadFileUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("compliments:\n  portraits: [\"x\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
