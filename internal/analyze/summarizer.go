package analyze

import (
	"fmt"
	"sort"
	"strings"

	"lernquiz/internal/models"
)

// BoostStrategy bestimmt, wie die Satzposition in den Score einfließt
type BoostStrategy int

const (
	// BoostContinuous gewichtet frühe Sätze kontinuierlich stärker:
	// max(0.5, 1 - (index/gesamt)*0.3)
	BoostContinuous BoostStrategy = iota
	// BoostEdges hebt die ersten beiden Sätze (1.5) und die letzten
	// beiden (1.2) hervor; wird vom strukturierten Modus verwendet
	BoostEdges
)

// Summarizer erstellt extraktive Zusammenfassungen durch
// häufigkeitsbasiertes Satz-Ranking. Zustandslos: jeder Aufruf rechnet
// vollständig aus dem Rohtext.
type Summarizer struct {
	tokenizer *Tokenizer
	boost     BoostStrategy
}

// NewSummarizer erstellt einen Summarizer mit der gewählten
// Positions-Strategie
func NewSummarizer(boost BoostStrategy) *Summarizer {
	return &Summarizer{
		tokenizer: NewTokenizer(),
		boost:     boost,
	}
}

// SummarizeSentences liefert die target wichtigsten Sätze in
// Originalreihenfolge. Enthält der Text höchstens target Sätze, werden
// alle unverändert zurückgegeben (expliziter Kurzschluss, kein Ranking).
func (s *Summarizer) SummarizeSentences(text string, target int) ([]string, error) {
	if target <= 0 {
		return nil, fmt.Errorf("ungültige satzanzahl: %d", target)
	}

	sentences := s.tokenizer.Segment(text)
	if len(sentences) == 0 {
		return []string{}, nil
	}
	if len(sentences) <= target {
		return sentences, nil
	}

	freq := Frequencies(s.tokenizer.ContentWords(text))

	type scored struct {
		index int
		score float64
	}

	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		sum := 0
		for _, w := range s.tokenizer.Words(sentence) {
			sum += freq[w]
		}
		ranked[i] = scored{
			index: i,
			score: float64(sum) * s.positionBoost(i, len(sentences)),
		}
	}

	// Stabil: bei Gleichstand gewinnt der frühere Satz
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	selected := make([]int, target)
	for i := 0; i < target; i++ {
		selected[i] = ranked[i].index
	}
	sort.Ints(selected)

	result := make([]string, target)
	for i, idx := range selected {
		result[i] = sentences[idx]
	}
	return result, nil
}

// Summarize erstellt die Zusammenfassung als Fließtext samt Kennzahlen
func (s *Summarizer) Summarize(text string, target int) (models.SummaryResult, error) {
	sentences, err := s.SummarizeSentences(text, target)
	if err != nil {
		return models.SummaryResult{}, err
	}

	summary := joinSentences(sentences)

	ratio := 0.0
	if cleaned := CleanText(text); len(cleaned) > 0 {
		ratio = float64(len(summary)) / float64(len(cleaned)) * 100
	}

	return models.SummaryResult{
		Text:             summary,
		SentenceCount:    len(sentences),
		CompressionRatio: ratio,
	}, nil
}

// StructuredSummary erstellt eine gegliederte Zusammenfassung: die acht
// bestbewerteten Sätze werden in Abschnitte aufgeteilt (Überblick 2,
// Kernkonzepte 3, wichtige Punkte 3), dazu kommen synthetisierte
// Key Takeaways aus den Top-Schlüsselbegriffen und Themennamen.
func (s *Summarizer) StructuredSummary(text string, keywords []models.Keyword, topics []models.Topic) (string, error) {
	edges := s
	if s.boost != BoostEdges {
		edges = NewSummarizer(BoostEdges)
	}

	sentences, err := edges.SummarizeSentences(text, 8)
	if err != nil {
		return "", err
	}
	if len(sentences) == 0 {
		return "", nil
	}

	var b strings.Builder

	writeSection := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(title)
		for _, line := range lines {
			b.WriteString("\n• ")
			b.WriteString(terminate(line))
		}
	}

	writeSection("📚 TOPIC OVERVIEW", sliceRange(sentences, 0, 2))
	writeSection("🔑 KEY CONCEPTS", sliceRange(sentences, 2, 5))
	writeSection("💡 IMPORTANT POINTS", sliceRange(sentences, 5, 8))

	var takeaways []string
	for i, kw := range keywords {
		if i >= 3 {
			break
		}
		takeaways = append(takeaways, fmt.Sprintf("%s is a central term of this material", kw.Word))
	}
	for i, topic := range topics {
		if i >= 2 {
			break
		}
		takeaways = append(takeaways, fmt.Sprintf("The topic %s connects %d related key terms", topic.Name, topic.Frequency))
	}
	writeSection("✅ KEY TAKEAWAYS", takeaways)

	return b.String(), nil
}

// positionBoost liefert den Positionsfaktor gemäß der Strategie
func (s *Summarizer) positionBoost(index, total int) float64 {
	switch s.boost {
	case BoostEdges:
		switch {
		case index < 2:
			return 1.5
		case index >= total-2:
			return 1.2
		default:
			return 1.0
		}
	default:
		boost := 1.0 - (float64(index)/float64(total))*0.3
		if boost < 0.5 {
			boost = 0.5
		}
		return boost
	}
}

// joinSentences verbindet Sätze mit einzelnen Leerzeichen und stellt
// sicher, dass jeder Satz mit einem Satzzeichen endet
func joinSentences(sentences []string) string {
	parts := make([]string, len(sentences))
	for i, sentence := range sentences {
		parts[i] = terminate(sentence)
	}
	return strings.Join(parts, " ")
}

// terminate hängt einen Punkt an, falls das Satzende unpunktiert ist
func terminate(sentence string) string {
	if sentence == "" {
		return sentence
	}
	switch sentence[len(sentence)-1] {
	case '.', '!', '?':
		return sentence
	}
	return sentence + "."
}

func sliceRange(items []string, from, to int) []string {
	if from >= len(items) {
		return nil
	}
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}
