package analyze

import (
	"math"
	"strings"

	"lernquiz/internal/models"
)

// Standardwerte der Analyse-Pipeline
const (
	defaultSummarySentences = 3
	defaultKeywordCount     = 15
	fallbackSummaryChars    = 300
	wordsPerMinute          = 200
)

// Analyzer führt die vollständige lokale Analyse-Pipeline aus:
// Zusammenfassung, Schlüsselbegriffe, Themen und Kennzahlen aus einem
// einzigen Rohtext. Deterministisch, ohne externe Dienste.
type Analyzer struct {
	tokenizer  *Tokenizer
	summarizer *Summarizer
	keywords   *KeywordExtractor

	summarySentences int
	keywordCount     int
}

// NewAnalyzer erstellt einen Analyzer mit den Standardwerten
// (3 Sätze Zusammenfassung, 15 Schlüsselbegriffe)
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		tokenizer:        NewTokenizer(),
		summarizer:       NewSummarizer(BoostContinuous),
		keywords:         NewKeywordExtractor(SimilarityPrefix),
		summarySentences: defaultSummarySentences,
		keywordCount:     defaultKeywordCount,
	}
}

// Analyze analysiert den Text vollständig. Leerer oder reiner
// Whitespace-Text ergibt ein gültiges leeres Ergebnis mit Nullwerten,
// nie einen Fehler: fehlender Inhalt ist kein Ausnahmezustand.
func (a *Analyzer) Analyze(text string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Keywords: []models.Keyword{},
		Topics:   []models.Topic{},
		Metadata: models.Metadata{Difficulty: models.DifficultyEasy},
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return result
	}

	summary, err := a.summarizer.Summarize(cleaned, a.summarySentences)
	if err == nil && summary.Text != "" {
		result.Summary = summary.Text
	} else {
		// Überlebt kein Satz den Längenfilter, dient der Textanfang
		// als Notbehelf
		result.Summary = truncate(cleaned, fallbackSummaryChars)
	}

	result.Keywords = a.keywords.ExtractKeywords(cleaned, a.keywordCount)
	result.Topics = a.keywords.ExtractTopics(result.Keywords)
	result.Metadata = a.metadata(cleaned, summary.CompressionRatio)

	return result
}

// StructuredSummary erstellt die gegliederte Zusammenfassung des Texts
// auf Basis der bereits extrahierten Begriffe und Themen
func (a *Analyzer) StructuredSummary(text string, keywords []models.Keyword, topics []models.Topic) (string, error) {
	return a.summarizer.StructuredSummary(text, keywords, topics)
}

// Sentences liefert die gefilterten Sätze des Texts (für die
// Fragengenerierung)
func (a *Analyzer) Sentences(text string) []string {
	return a.tokenizer.Segment(text)
}

// Keywords extrahiert bis zu n Schlüsselbegriffe (für die
// Fragengenerierung, die mehr Kandidaten braucht als die Analyse
// speichert)
func (a *Analyzer) Keywords(text string, n int) []models.Keyword {
	return a.keywords.ExtractKeywords(text, n)
}

// metadata berechnet die Kennzahlen des Texts. UniqueWordRatio zählt
// nur begriffsfähige Wörter (ab 4 Zeichen, keine Stoppwörter) im
// Verhältnis zur Gesamtwortzahl.
func (a *Analyzer) metadata(text string, compressionRatio float64) models.Metadata {
	words := a.tokenizer.Words(text)
	sentences := a.tokenizer.Segment(text)

	wordCount := len(words)
	sentenceCount := len(sentences)

	avgWords := 0.0
	if sentenceCount > 0 {
		avgWords = float64(wordCount) / float64(sentenceCount)
	}

	unique := make(map[string]struct{})
	for _, w := range words {
		if len(w) >= 4 && !a.tokenizer.IsStopword(w) {
			unique[w] = struct{}{}
		}
	}
	uniqueRatio := 0.0
	if wordCount > 0 {
		uniqueRatio = float64(len(unique)) / float64(wordCount)
	}

	readingTime := 0
	if wordCount > 0 {
		readingTime = int(math.Ceil(float64(wordCount) / wordsPerMinute))
	}

	return models.Metadata{
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		AvgWordsPerSentence: int(math.Round(avgWords)),
		UniqueWordRatio:     int(math.Round(uniqueRatio * 100)),
		Difficulty:          ClassifyDifficulty(wordCount, avgWords, uniqueRatio),
		CompressionRatio:    int(math.Round(compressionRatio)),
		ReadingTime:         readingTime,
	}
}

// truncate kürzt den Text auf höchstens n Zeichen an einer Wortgrenze
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := text[:n]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
