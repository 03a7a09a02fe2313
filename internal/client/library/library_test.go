package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/SolForge/internal/models"
)

func TestOpen_FileNotExist(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "cards.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := len(l.List()); got != 0 {
		t.Errorf("expected no cards, got %d", got)
	}
}

func TestLibrary_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cards.json")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	minted, err := models.Card{ID: "b", Name: "Frost Wyrm"}.WithMint("Mint1", "sig")
	if err != nil {
		t.Fatal(err)
	}
	l.Put(models.Card{ID: "a", Name: "Ember Drake"})
	l.Put(minted)
	l.Put(models.Card{ID: "a", Name: "Ember Drake II"})
	if err := l.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	cards := again.List()
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].ID != "a" || cards[0].Name != "Ember Drake II" {
		t.Errorf("expected last write to win, got %+v", cards[0])
	}
	if addr, ok := cards[1].MintAddress(); !ok || addr != "Mint1" {
		t.Errorf("mint record lost: %q %v", addr, ok)
	}
}

func TestLibrary_Get(t *testing.T) {
	l, _ := Open(filepath.Join(t.TempDir(), "cards.json"))
	l.Put(models.Card{ID: "c1"})

	if _, err := l.Get("c1"); err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if _, err := l.Get("c2"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solforge", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server != DefaultConfig().Server {
		t.Errorf("unexpected server %q", cfg.Server)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be written: %v", err)
	}

	cfg.Treasury = "Treasury111"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Treasury != "Treasury111" {
		t.Errorf("expected saved treasury, got %q", again.Treasury)
	}
}

func TestPaths_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")

	if got := DefaultLibraryPath(); got != filepath.Join("/data", "solforge", "cards.json") {
		t.Errorf("DefaultLibraryPath = %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/conf", "solforge", "config.toml") {
		t.Errorf("DefaultConfigPath = %q", got)
	}
	if got := DefaultKeypairPath(); got != filepath.Join("/conf", "solana", "id.json") {
		t.Errorf("DefaultKeypairPath = %q", got)
	}
}
