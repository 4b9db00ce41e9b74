package analyze

import (
	"strings"
	"unicode"
)

// DefaultStopwords ist die geschlossene Liste englischer Funktionswörter,
// die bei Häufigkeits- und Ranking-Berechnungen ignoriert werden
func DefaultStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"is", "are", "was", "were", "been", "be", "have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "can", "this", "that", "these", "those",
		"a", "an", "as", "if", "it", "its", "then", "than", "only", "also", "just", "very",
		"so", "about", "into", "through", "during", "before", "after", "above", "below",
		"up", "down", "out", "off", "over", "under", "again", "further", "once",
		"here", "there", "when", "where", "why", "how", "all", "any", "both", "each",
		"few", "more", "most", "other", "some", "such", "no", "nor", "not", "own", "same",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Tokenizer zerlegt Rohtext in bereinigte Sätze und normalisierte Wörter
type Tokenizer struct {
	minSentenceLen int
	minWordLen     int
	stopwords      map[string]struct{}
}

// NewTokenizer erstellt einen Tokenizer mit den Standardschwellwerten
// (Sätze ab 15 Zeichen, Wörter ab 3 Zeichen)
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		minSentenceLen: 15,
		minWordLen:     3,
		stopwords:      DefaultStopwords(),
	}
}

// CleanText normalisiert Whitespace zu einzelnen Leerzeichen
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Segment zerlegt den Text in Sätze. Getrennt wird an Folgen von .!?,
// aber nur wenn danach Whitespace und ein Großbuchstabe folgt (bzw. das
// Textende erreicht ist), damit Abkürzungen und Dezimalzahlen nicht
// zerrissen werden. Fragmente unter der Mindestlänge werden verworfen.
func (t *Tokenizer) Segment(text string) []string {
	text = CleanText(text)
	if text == "" {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0

	appendSegment := func(end int) {
		seg := strings.TrimSpace(string(runes[start:end]))
		if len(seg) >= t.minSentenceLen {
			sentences = append(sentences, seg)
		}
	}

	for i < len(runes) {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			i++
			continue
		}

		// Terminator-Sequenz (z.B. "?!", "...") komplett überspringen
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			j++
		}

		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}

		if k >= len(runes) {
			appendSegment(i)
			start = len(runes)
			break
		}

		if k > j && unicode.IsUpper(runes[k]) {
			appendSegment(i)
			start = k
			i = k
			continue
		}

		// Kein Satzende (Abkürzung, Dezimalzahl o.ä.)
		i = j
	}

	if start < len(runes) {
		appendSegment(len(runes))
	}

	return sentences
}

// Words liefert alle bereinigten Wörter des Texts: kleingeschrieben,
// von Nicht-Buchstaben befreit und mindestens minWordLen Zeichen lang.
// Stoppwörter bleiben hier enthalten (relevant für Wortzahl-Metriken).
func (t *Tokenizer) Words(text string) []string {
	var words []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		w := stripNonLetters(field)
		if len(w) >= t.minWordLen {
			words = append(words, w)
		}
	}
	return words
}

// ContentWords liefert die Wörter des Texts ohne Stoppwörter
func (t *Tokenizer) ContentWords(text string) []string {
	var words []string
	for _, w := range t.Words(text) {
		if !t.IsStopword(w) {
			words = append(words, w)
		}
	}
	return words
}

// IsStopword prüft, ob ein Wort in der Stoppwortliste steht
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// stripNonLetters entfernt alle Nicht-Buchstaben aus einem Token
func stripNonLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
