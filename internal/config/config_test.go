package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.UseAI {
		t.Error("UseAI ist ohne API-Key aktiv")
	}
	if cfg.SummarySentences != 3 || cfg.KeywordCount != 15 {
		t.Errorf("Analyse-Defaults = %d/%d, want 3/15", cfg.SummarySentences, cfg.KeywordCount)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("erwartete Fehler bei fehlender Datei")
	}
	if cfg == nil || cfg.ServerPort != "8080" {
		t.Error("Defaults fehlen trotz Fehler")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server_port": "9090", "keyword_count": 5}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.KeywordCount != 5 {
		t.Errorf("KeywordCount = %d, want 5", cfg.KeywordCount)
	}
	// Nicht gesetzte Felder behalten die Defaults
	if cfg.SummarySentences != 3 {
		t.Errorf("SummarySentences = %d, want 3", cfg.SummarySentences)
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if !cfg.UseAI {
		t.Error("UseAI bleibt trotz API-Key inaktiv")
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want 7070", cfg.ServerPort)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.ServerPort = "9999"
	cfg.GeminiAPIKey = "secret"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Der API-Key darf nie in der Datei landen
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("API-Key wurde gespeichert")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServerPort != "9999" {
		t.Errorf("ServerPort = %q, want 9999", loaded.ServerPort)
	}
}
