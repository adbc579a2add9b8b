package platform

import (
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	specs := []FilterSpec{
		{Key: "content", Kind: FilterText},
		{Key: "has", Kind: FilterSelect, Default: "file"},
		{
			Key:  "options",
			Kind: FilterToggles,
			Toggles: []FilterToggle{
				{Key: "oldest", Title: "Start from oldest", Default: true},
				{Key: "nsfw", Title: "Include NSFW", Default: false},
			},
		},
	}

	got := DefaultValues(specs)

	if _, ok := got["content"]; ok {
		t.Error("content has no default, should be absent")
	}
	if got.Text("has") != "file" {
		t.Errorf("has = %q, want %q", got.Text("has"), "file")
	}
	if !got.Toggle("oldest") {
		t.Error("oldest toggle default not applied")
	}
	if got.Toggle("nsfw") {
		t.Error("nsfw toggle should default to false")
	}
}

func TestFiltersAccessors(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Filters{
		"content": "hello",
		"oldest":  true,
		"range":   DateRange{From: from},
	}

	if f.Text("content") != "hello" {
		t.Errorf("Text(content) = %q", f.Text("content"))
	}
	if f.Text("missing") != "" {
		t.Error("Text on missing key should be empty")
	}
	if !f.Toggle("oldest") {
		t.Error("Toggle(oldest) = false")
	}
	if f.Toggle("content") {
		t.Error("Toggle on non-bool should be false")
	}

	r, ok := f.Range("range")
	if !ok || !r.From.Equal(from) || !r.To.IsZero() {
		t.Errorf("Range(range) = %+v, %v", r, ok)
	}
	if _, ok := f.Range("content"); ok {
		t.Error("Range on non-range should report false")
	}
}
