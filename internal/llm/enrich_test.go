package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"lernquiz/internal/analyze"
)

// stubProvider beantwortet jede Teilanfrage aus einer festen Tabelle
type stubProvider struct {
	responses map[string]string
	err       error
}

func (s *stubProvider) Generate(_ context.Context, prompt string, _ *GenerateOptions) (*GenerateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	for marker, content := range s.responses {
		if strings.Contains(prompt, marker) {
			return &GenerateResponse{Content: content, Done: true}, nil
		}
	}
	return &GenerateResponse{Content: "", Done: true}, nil
}

func (s *stubProvider) IsAvailable(context.Context) bool { return true }
func (s *stubProvider) GetName() string                  { return "Stub" }
func (s *stubProvider) SetModel(string)                  {}
func (s *stubProvider) GetCurrentModel() string          { return "stub" }

const enrichText = "Photosynthesis is the process used by plants to convert light. The light energy becomes chemical energy inside chloroplasts. Water and carbon dioxide serve as the raw materials."

func goodResponses() map[string]string {
	return map[string]string{
		"Summarize": "Plants convert light into chemical energy.",
		"Extract":   `[{"word": "Photosynthesis", "score": 0.05, "frequency": 3}]`,
		"Group":     `[{"name": "Photosynthesis", "keywords": ["Photosynthesis"], "importance": 0.05, "frequency": 1}]`,
		"Classify":  "medium",
	}
}

func TestEnrichSuccess(t *testing.T) {
	provider := &stubProvider{responses: goodResponses()}
	e := NewEnricher(provider, analyze.NewAnalyzer(), 5*time.Second)

	got := e.Enrich(context.Background(), enrichText)

	if got.Summary != "Plants convert light into chemical energy." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Keywords) != 1 || got.Keywords[0].Word != "Photosynthesis" {
		t.Errorf("Keywords = %+v", got.Keywords)
	}
	if got.Metadata.Difficulty != "medium" {
		t.Errorf("Difficulty = %q, want medium", got.Metadata.Difficulty)
	}
	// Lokale Kennzahlen bleiben erhalten
	if got.Metadata.WordCount == 0 {
		t.Error("WordCount ging verloren")
	}
}

func TestEnrichFencedJSON(t *testing.T) {
	responses := goodResponses()
	responses["Extract"] = "```json\n[{\"word\": \"Photosynthesis\", \"score\": 0.05, \"frequency\": 3}]\n```"

	e := NewEnricher(&stubProvider{responses: responses}, analyze.NewAnalyzer(), 5*time.Second)
	got := e.Enrich(context.Background(), enrichText)

	if len(got.Keywords) != 1 || got.Keywords[0].Word != "Photosynthesis" {
		t.Errorf("Keywords = %+v", got.Keywords)
	}
}

func TestEnrichFallbackOnError(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{
			name:     "provider nicht erreichbar",
			provider: &stubProvider{err: context.DeadlineExceeded},
		},
		{
			name: "ungültiges json bei keywords",
			provider: &stubProvider{responses: map[string]string{
				"Summarize": "Plants convert light into chemical energy.",
				"Extract":   "not json at all",
				"Group":     `[]`,
				"Classify":  "easy",
			}},
		},
		{
			name: "unbekannte schwierigkeit",
			provider: &stubProvider{responses: map[string]string{
				"Summarize": "Plants convert light into chemical energy.",
				"Extract":   `[]`,
				"Group":     `[]`,
				"Classify":  "impossible",
			}},
		},
		{
			name: "unbekannte felder werden abgelehnt",
			provider: &stubProvider{responses: map[string]string{
				"Summarize": "Plants convert light into chemical energy.",
				"Extract":   `[{"word": "X", "score": 0.1, "frequency": 1, "extra": true}]`,
				"Group":     `[]`,
				"Classify":  "easy",
			}},
		},
		{
			// json "null" dekodiert fehlerfrei in eine nil-Slice und darf
			// nicht als Erfolg durchgehen
			name: "null statt keyword-liste",
			provider: &stubProvider{responses: map[string]string{
				"Summarize": "Plants convert light into chemical energy.",
				"Extract":   "null",
				"Group":     `[]`,
				"Classify":  "easy",
			}},
		},
		{
			name: "null statt themen-liste",
			provider: &stubProvider{responses: map[string]string{
				"Summarize": "Plants convert light into chemical energy.",
				"Extract":   `[{"word": "X", "score": 0.1, "frequency": 1}]`,
				"Group":     "null",
				"Classify":  "easy",
			}},
		},
	}

	local := analyze.NewAnalyzer().Analyze(enrichText)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnricher(tt.provider, analyze.NewAnalyzer(), 5*time.Second)
			got := e.Enrich(context.Background(), enrichText)

			// Vollständiger Rückfall auf das lokale Ergebnis, kein Mischen
			if got.Summary != local.Summary {
				t.Errorf("Summary = %q, want lokales %q", got.Summary, local.Summary)
			}
			if len(got.Keywords) != len(local.Keywords) {
				t.Errorf("Keywords = %d, want lokale %d", len(got.Keywords), len(local.Keywords))
			}
			if got.Metadata.Difficulty != local.Metadata.Difficulty {
				t.Errorf("Difficulty = %q, want lokale %q", got.Metadata.Difficulty, local.Metadata.Difficulty)
			}
		})
	}
}

func TestEnrichNilProvider(t *testing.T) {
	e := NewEnricher(nil, analyze.NewAnalyzer(), time.Second)

	got := e.Enrich(context.Background(), enrichText)
	if got == nil || got.Summary == "" {
		t.Error("lokales Ergebnis fehlt ohne Provider")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  easy  ", "easy"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.input); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
