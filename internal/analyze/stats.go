package analyze

import (
	"math"
	"sort"
	"strings"

	"github.com/kljensen/snowball"

	"lernquiz/internal/models"
)

// Frequencies zählt die Vorkommen jedes Worts
func Frequencies(words []string) map[string]int {
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}

// Corpus hält mehrere Dokumente für dokumentübergreifende
// TF-IDF-Berechnungen. Tokens werden mit dem Porter-Stemmer auf ihren
// Wortstamm reduziert, damit Flexionsformen zusammenfallen.
// Mit nur einem Dokument ist IDF stets 0; der TF-IDF-Modus ist erst ab
// zwei Dokumenten sinnvoll.
type Corpus struct {
	tokenizer *Tokenizer
	docs      [][]string     // gestemmte Tokens je Dokument
	docFreq   map[string]int // Anzahl Dokumente je Term
}

// NewCorpus erstellt einen leeren TF-IDF-Korpus
func NewCorpus() *Corpus {
	return &Corpus{
		tokenizer: NewTokenizer(),
		docFreq:   make(map[string]int),
	}
}

// AddDocument nimmt ein Dokument in den Korpus auf
func (c *Corpus) AddDocument(text string) {
	tokens := c.stemTokens(text)
	c.docs = append(c.docs, tokens)

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		c.docFreq[tok]++
	}
}

// DocumentCount liefert die Anzahl der aufgenommenen Dokumente
func (c *Corpus) DocumentCount() int {
	return len(c.docs)
}

// TF berechnet die relative Termfrequenz innerhalb eines Dokuments
func (c *Corpus) TF(term string, docIndex int) float64 {
	if docIndex < 0 || docIndex >= len(c.docs) {
		return 0
	}
	doc := c.docs[docIndex]
	if len(doc) == 0 {
		return 0
	}
	count := 0
	for _, tok := range doc {
		if tok == term {
			count++
		}
	}
	return float64(count) / float64(len(doc))
}

// IDF berechnet ln(Dokumente gesamt / Dokumente mit Term).
// Kommt der Term in keinem Dokument vor, ist das Ergebnis 0
// (verhindert Division durch null).
func (c *Corpus) IDF(term string) float64 {
	df := c.docFreq[term]
	if df == 0 {
		return 0
	}
	return math.Log(float64(len(c.docs)) / float64(df))
}

// TFIDF kombiniert TF und IDF für einen Term eines Dokuments
func (c *Corpus) TFIDF(term string, docIndex int) float64 {
	return c.TF(term, docIndex) * c.IDF(term)
}

// TopKeywords bewertet die Terme eines Texts gegen den Korpus und liefert
// die bis zu n am höchsten bewerteten (Score > 0) absteigend sortiert
func (c *Corpus) TopKeywords(text string, n int) []models.Keyword {
	tokens := c.stemTokens(text)
	if len(tokens) == 0 || n <= 0 {
		return []models.Keyword{}
	}

	counts := Frequencies(tokens)
	total := float64(len(tokens))

	keywords := make([]models.Keyword, 0, len(counts))
	for term, count := range counts {
		tf := float64(count) / total
		score := tf * c.IDF(term)
		if score <= 0 {
			continue
		}
		keywords = append(keywords, models.Keyword{
			Word:      term,
			Score:     score,
			Frequency: count,
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Word < keywords[j].Word
	})

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// stemTokens tokenisiert ohne Stoppwörter und reduziert auf Wortstämme
func (c *Corpus) stemTokens(text string) []string {
	words := c.tokenizer.ContentWords(text)
	stems := make([]string, 0, len(words))
	for _, w := range words {
		stemmed, err := snowball.Stem(w, "english", true)
		if err != nil || stemmed == "" {
			stemmed = strings.ToLower(w)
		}
		stems = append(stems, stemmed)
	}
	return stems
}
