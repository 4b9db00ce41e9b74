package config

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

// Config enthält alle Konfigurationseinstellungen
type Config struct {
	// Server-Einstellungen
	ServerPort string `json:"server_port"`

	// Pfade
	DatabasePath string `json:"database_path"`

	// KI-Einstellungen
	UseAI                bool   `json:"use_ai"`
	GeminiAPIKey         string `json:"-"` // nur über Umgebung, nie aus der Datei
	GeminiModel          string `json:"gemini_model"`
	EnrichTimeoutSeconds int    `json:"enrich_timeout_seconds"`

	// Analyse-Einstellungen
	SummarySentences     int `json:"summary_sentences"`
	KeywordCount         int `json:"keyword_count"`
	DefaultQuestionCount int `json:"default_question_count"`
}

// Default gibt die Standardkonfiguration zurück
func Default() *Config {
	return &Config{
		ServerPort:           "8080",
		DatabasePath:         "lernquiz.db",
		UseAI:                false,
		GeminiModel:          "gemini-1.5-flash",
		EnrichTimeoutSeconds: 60,
		SummarySentences:     3,
		KeywordCount:         15,
		DefaultQuestionCount: 10,
	}
}

// Load lädt die Konfiguration aus einer Datei und ergänzt sie aus der
// Umgebung. Eine .env-Datei im Arbeitsverzeichnis wird berücksichtigt;
// der API-Key kommt ausschließlich aus der Umgebung.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Fehlende .env ist kein Fehler
	godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save speichert die Konfiguration in eine Datei
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.GeminiAPIKey = key
		c.UseAI = true
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.GeminiModel = model
	}
	if port := os.Getenv("PORT"); port != "" {
		c.ServerPort = port
	}
}
