package account

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUpsertAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}

	acc := Account{
		Platform:  "discord",
		ID:        "42",
		Name:      "kekst",
		Token:     "tok-1",
		Refreshed: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Upsert(acc); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}

	// Same (platform, id) replaces rather than duplicates.
	acc.Token = "tok-2"
	if err := s.Upsert(acc); err != nil {
		t.Fatalf("Upsert() = %v", err)
	}
	if got := s.List(); len(got) != 1 || got[0].Token != "tok-2" {
		t.Fatalf("List() = %+v", got)
	}

	reloaded, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() reload = %v", err)
	}
	got, ok := reloaded.Get("discord", "42")
	if !ok {
		t.Fatal("account missing after reload")
	}
	if got.Token != "tok-2" || got.Name != "kekst" {
		t.Errorf("reloaded account = %+v", got)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}

	s.Upsert(Account{Platform: "discord", ID: "1"})
	s.Upsert(Account{Platform: "reddit", ID: "1"})

	if err := s.Remove("discord", "1"); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if _, ok := s.Get("discord", "1"); ok {
		t.Error("removed account still present")
	}
	if _, ok := s.Get("reddit", "1"); !ok {
		t.Error("unrelated account was removed")
	}

	// Removing a missing account is a no-op.
	if err := s.Remove("discord", "missing"); err != nil {
		t.Errorf("Remove(missing) = %v", err)
	}
}

func TestByPlatform(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)
	s.Upsert(Account{Platform: "discord", ID: "1"})
	s.Upsert(Account{Platform: "discord", ID: "2"})
	s.Upsert(Account{Platform: "reddit", ID: "3"})

	if got := s.ByPlatform("discord"); len(got) != 2 {
		t.Errorf("ByPlatform(discord) = %d accounts, want 2", len(got))
	}
}

func TestOnChange(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(dir)

	calls := 0
	s.OnChange(func() { calls++ })

	s.Upsert(Account{Platform: "discord", ID: "1"})
	s.Remove("discord", "1")
	s.Remove("discord", "1") // no-op, no notification

	if calls != 2 {
		t.Errorf("onChange calls = %d, want 2", calls)
	}
}

func TestOpenRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	raw, _ := json.Marshal(map[string]any{"version": 99})
	if err := os.WriteFile(filepath.Join(dir, "accounts.json"), raw, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(dir); err == nil {
		t.Error("Open() accepted a newer store version")
	}
}
