package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    Flag
		wantErr bool
	}{
		{input: `1`, want: true},
		{input: `0`, want: false},
		{input: `true`, want: true},
		{input: `false`, want: false},
		{input: `null`, want: false},
		{input: `2`, want: true},
		{input: `"yes"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.input), &f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if !tt.wantErr && f != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, f, tt.want)
			}
		})
	}
}

func TestPostMissingPinned(t *testing.T) {
	var p Post
	if err := json.Unmarshal([]byte(`{"id": 5, "date": 1704103200}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.IsPinned {
		t.Error("missing is_pinned should decode as false")
	}
	if p.Key() != "5" {
		t.Errorf("Key() = %q", p.Key())
	}
	if got := p.CreatedAt().Format("2006-01-02T15:04:05Z07:00"); got != "2024-01-01T10:00:00Z" {
		t.Errorf("CreatedAt() = %s", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "weekly", want: CategoryWeekly},
		{input: " Equipment_And_Studio ", want: CategoryEquipmentAndStudio},
		{input: "tattoo_ideas", want: CategoryTattooIdeas},
		{input: "memes", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCategory) {
					t.Errorf("error = %v, want ErrUnknownCategory", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, %v", tt.input, got, err)
			}
		})
	}
}

func TestAllCategoriesIsCopy(t *testing.T) {
	all := AllCategories()
	if len(all) != 9 {
		t.Fatalf("len = %d, want 9", len(all))
	}
	all[0] = "changed"
	if AllCategories()[0] == "changed" {
		t.Error("AllCategories() should return a copy")
	}
}
