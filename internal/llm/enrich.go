package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"lernquiz/internal/analyze"
	"lernquiz/internal/models"
)

// enrichMaxChars begrenzt den an das LLM gesendeten Textausschnitt
const enrichMaxChars = 8000

// Enricher reichert die lokale Analyse per LLM an. Die lokale Pipeline
// läuft immer zuerst und bleibt das verbindliche Ergebnis, wenn auch
// nur eine der vier Teilanfragen scheitert: angereicherte und lokale
// Artefakte werden nie gemischt.
type Enricher struct {
	provider Provider
	analyzer *analyze.Analyzer
	timeout  time.Duration
}

// NewEnricher erstellt einen Enricher. Ohne Timeout gilt eine Minute.
func NewEnricher(provider Provider, analyzer *analyze.Analyzer, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Enricher{
		provider: provider,
		analyzer: analyzer,
		timeout:  timeout,
	}
}

// Enrich analysiert den Text lokal und versucht anschließend, alle vier
// Artefakte (Zusammenfassung, Schlüsselbegriffe, Themen, Schwierigkeit)
// parallel per LLM zu ersetzen. Alles-oder-nichts: bei jedem Fehler
// kommt das vollständige lokale Ergebnis zurück.
func (e *Enricher) Enrich(ctx context.Context, text string) *models.AnalysisResult {
	local := e.analyzer.Analyze(text)

	if e.provider == nil || strings.TrimSpace(text) == "" {
		return local
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	excerpt := text
	if len(excerpt) > enrichMaxChars {
		excerpt = excerpt[:enrichMaxChars]
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		failures   []error
		summary    string
		keywords   []models.Keyword
		topics     []models.Topic
		difficulty string
	)

	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		resp, err := e.provider.Generate(ctx, summaryPrompt(excerpt), nil)
		if err != nil {
			fail(fmt.Errorf("zusammenfassung: %w", err))
			return
		}
		summary = strings.TrimSpace(resp.Content)
		if summary == "" {
			fail(fmt.Errorf("zusammenfassung leer"))
		}
	}()

	go func() {
		defer wg.Done()
		resp, err := e.provider.Generate(ctx, keywordsPrompt(excerpt), nil)
		if err != nil {
			fail(fmt.Errorf("schlüsselbegriffe: %w", err))
			return
		}
		if err := decodeStrict(resp.Content, &keywords); err != nil {
			fail(fmt.Errorf("schlüsselbegriffe unlesbar: %w", err))
		} else if keywords == nil {
			// json "null" dekodiert fehlerfrei in eine nil-Slice
			fail(fmt.Errorf("schlüsselbegriffe: null statt liste"))
		}
	}()

	go func() {
		defer wg.Done()
		resp, err := e.provider.Generate(ctx, topicsPrompt(excerpt), nil)
		if err != nil {
			fail(fmt.Errorf("themen: %w", err))
			return
		}
		if err := decodeStrict(resp.Content, &topics); err != nil {
			fail(fmt.Errorf("themen unlesbar: %w", err))
		} else if topics == nil {
			fail(fmt.Errorf("themen: null statt liste"))
		}
	}()

	go func() {
		defer wg.Done()
		resp, err := e.provider.Generate(ctx, difficultyPrompt(excerpt), nil)
		if err != nil {
			fail(fmt.Errorf("schwierigkeit: %w", err))
			return
		}
		difficulty = strings.ToLower(strings.TrimSpace(stripFences(resp.Content)))
		switch difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			fail(fmt.Errorf("schwierigkeit ungültig: %q", difficulty))
		}
	}()

	wg.Wait()

	if len(failures) > 0 {
		log.Printf("⚠️  KI-Anreicherung fehlgeschlagen (%d Teilanfragen), lokales Ergebnis wird verwendet: %v",
			len(failures), failures[0])
		return local
	}

	enriched := *local
	enriched.Summary = summary
	enriched.Keywords = keywords
	enriched.Topics = topics
	enriched.Metadata.Difficulty = difficulty

	log.Printf("✨ KI-Anreicherung erfolgreich (%s)", e.provider.GetName())
	return &enriched
}

func summaryPrompt(text string) string {
	return "Summarize the following study material in 3 concise sentences. Respond with plain text only, no markdown.\n\n" + text
}

func keywordsPrompt(text string) string {
	return `Extract up to 15 key terms from the following study material. Respond with a JSON array only, no markdown fences, each element shaped like {"word": "Term", "score": 0.01, "frequency": 3} where score is the relative importance between 0 and 1 and frequency the number of occurrences.

` + text
}

func topicsPrompt(text string) string {
	return `Group the key terms of the following study material into up to 8 topics. Respond with a JSON array only, no markdown fences, each element shaped like {"name": "Topic", "keywords": ["Term"], "importance": 0.01, "frequency": 2}.

` + text
}

func difficultyPrompt(text string) string {
	return "Classify the difficulty of the following study material. Respond with exactly one word: easy, medium or hard.\n\n" + text
}

// decodeStrict dekodiert eine JSON-Antwort ohne Toleranz für unbekannte
// Felder. Markdown-Zäune werden vorher entfernt, weil LLMs sie trotz
// Anweisung gelegentlich setzen.
func decodeStrict(raw string, target interface{}) error {
	cleaned := stripFences(raw)
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// stripFences entfernt umschließende ```-Blöcke aus einer LLM-Antwort
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
