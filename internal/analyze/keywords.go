package analyze

import (
	"sort"
	"strings"
	"unicode"

	"lernquiz/internal/models"
)

// SimilarityStrategy bestimmt, wie lexikalische Verwandtschaft zweier
// Schlüsselbegriffe erkannt wird
type SimilarityStrategy int

const (
	// SimilarityPrefix gruppiert Begriffe, die das 4-Zeichen-Präfix des
	// jeweils anderen enthalten (Standard)
	SimilarityPrefix SimilarityStrategy = iota
	// SimilarityJaroWinkler gruppiert Begriffe mit einer
	// Jaro-Winkler-Ähnlichkeit über 0.7
	SimilarityJaroWinkler
)

// KeywordExtractor extrahiert Schlüsselbegriffe und gruppiert sie zu
// Themen. Die Stoppwortliste wird bei der Konstruktion injiziert und
// danach nie verändert.
type KeywordExtractor struct {
	tokenizer     *Tokenizer
	minKeywordLen int
	maxTopics     int
	similarity    SimilarityStrategy
	simThreshold  float64
}

// NewKeywordExtractor erstellt einen Extraktor mit den Standardwerten
// (Begriffe ab 4 Zeichen, höchstens 8 Themen, Präfix-Ähnlichkeit)
func NewKeywordExtractor(similarity SimilarityStrategy) *KeywordExtractor {
	return &KeywordExtractor{
		tokenizer:     NewTokenizer(),
		minKeywordLen: 4,
		maxTopics:     8,
		similarity:    similarity,
		simThreshold:  0.7,
	}
}

// ExtractKeywords liefert die bis zu n häufigsten Begriffe des Texts,
// absteigend nach Score sortiert. Der Score ist die Worthäufigkeit
// normalisiert auf die Gesamtwortzahl. Leerer Text ergibt eine leere
// Liste, nie einen Fehler.
func (e *KeywordExtractor) ExtractKeywords(text string, n int) []models.Keyword {
	if n <= 0 {
		return []models.Keyword{}
	}

	allWords := e.tokenizer.Words(text)
	if len(allWords) == 0 {
		return []models.Keyword{}
	}

	freq := make(map[string]int)
	for _, w := range allWords {
		if len(w) >= e.minKeywordLen && !e.tokenizer.IsStopword(w) {
			freq[w]++
		}
	}
	if len(freq) == 0 {
		return []models.Keyword{}
	}

	total := float64(len(allWords))
	keywords := make([]models.Keyword, 0, len(freq))
	for word, count := range freq {
		keywords = append(keywords, models.Keyword{
			Word:      capitalize(word),
			Score:     float64(count) / total,
			Frequency: count,
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Frequency != keywords[j].Frequency {
			return keywords[i].Frequency > keywords[j].Frequency
		}
		return keywords[i].Word < keywords[j].Word
	})

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// ExtractTopics gruppiert Schlüsselbegriffe zu Themen. Gieriger
// Einzeldurchlauf in Score-Reihenfolge: jeder Begriff verankert oder
// beansprucht höchstens ein Thema, der erste Treffer gewinnt. Das ist
// bewusst nicht global optimal. Importance ist der Mittelwert der
// Member-Scores; Ergebnis absteigend nach Importance, höchstens
// maxTopics Themen.
func (e *KeywordExtractor) ExtractTopics(keywords []models.Keyword) []models.Topic {
	topics := []models.Topic{}
	claimed := make(map[string]struct{}, len(keywords))

	for _, seed := range keywords {
		if len(topics) >= e.maxTopics {
			break
		}
		if _, ok := claimed[seed.Word]; ok {
			continue
		}

		var members []models.Keyword
		for _, candidate := range keywords {
			if _, ok := claimed[candidate.Word]; ok {
				continue
			}
			if e.related(seed.Word, candidate.Word) {
				members = append(members, candidate)
			}
		}
		if len(members) == 0 {
			continue
		}

		sum := 0.0
		names := make([]string, len(members))
		for i, m := range members {
			sum += m.Score
			names[i] = m.Word
			claimed[m.Word] = struct{}{}
		}

		topics = append(topics, models.Topic{
			Name:       seed.Word,
			Keywords:   names,
			Importance: sum / float64(len(members)),
			Frequency:  len(members),
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Importance > topics[j].Importance
	})
	return topics
}

// related prüft die lexikalische Verwandtschaft gemäß Strategie
func (e *KeywordExtractor) related(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}

	switch e.similarity {
	case SimilarityJaroWinkler:
		return jaroWinkler(la, lb) > e.simThreshold
	default:
		return sharesPrefix(la, lb, 4)
	}
}

// sharesPrefix prüft, ob ein Wort das n-Zeichen-Präfix des anderen enthält
func sharesPrefix(a, b string, n int) bool {
	if len(a) >= n && strings.Contains(b, a[:n]) {
		return true
	}
	if len(b) >= n && strings.Contains(a, b[:n]) {
		return true
	}
	return false
}

// jaroWinkler berechnet die Jaro-Winkler-Ähnlichkeit zweier Strings
// (0 = verschieden, 1 = identisch) mit dem üblichen Präfix-Faktor 0.1
func jaroWinkler(a, b string) float64 {
	jaro := jaroSimilarity(a, b)
	if jaro == 0 {
		return 0
	}

	prefix := 0
	for i := 0; i < len(a) && i < len(b) && i < 4; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*0.1*(1-jaro)
}

func jaroSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	matchA := make([]bool, len(a))
	matchB := make([]bool, len(b))
	matches := 0

	for i := 0; i < len(a); i++ {
		lo := max(0, i-window)
		hi := min(len(b)-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchB[j] || a[i] != b[j] {
				continue
			}
			matchA[i] = true
			matchB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < len(a); i++ {
		if !matchA[i] {
			continue
		}
		for !matchB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}

// capitalize schreibt den ersten Buchstaben groß (Anzeigeform)
func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
