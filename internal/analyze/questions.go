package analyze

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"lernquiz/internal/models"
)

// defaultCategoryDistractors ordnet fachlich naheliegende Falschantworten
// nach erkennbaren Themenfeldern zu
func defaultCategoryDistractors() map[string][]string {
	return map[string][]string{
		"science":     {"biology", "chemistry", "physics", "mathematics"},
		"biology":     {"chemistry", "physics", "science", "anatomy"},
		"chemistry":   {"biology", "physics", "science", "biochemistry"},
		"history":     {"geography", "politics", "culture", "society"},
		"mathematics": {"algebra", "geometry", "calculus", "statistics"},
	}
}

// defaultGenericDistractors ist der Rückfall-Pool, wenn kein Themenfeld passt
func defaultGenericDistractors() []string {
	return []string{"concept", "theory", "principle", "method", "process", "system"}
}

// Term ist das Ziel einer Frage: ein Schlüsselbegriff oder ein
// Themenname. Die explizite Vereinigung ersetzt stillschweigende
// Formannahmen über die beiden Typen.
type Term interface {
	TermText() string
	TermScore() float64
	TermFrequency() int
}

// KeywordTerm macht einen Schlüsselbegriff zum Fragenziel
type KeywordTerm struct {
	models.Keyword
}

func (t KeywordTerm) TermText() string   { return t.Word }
func (t KeywordTerm) TermScore() float64 { return t.Score }
func (t KeywordTerm) TermFrequency() int { return t.Frequency }

// TopicTerm macht einen Themennamen zum Fragenziel
type TopicTerm struct {
	models.Topic
}

func (t TopicTerm) TermText() string   { return t.Name }
func (t TopicTerm) TermScore() float64 { return t.Importance }
func (t TopicTerm) TermFrequency() int { return t.Frequency }

// GenerateRequest bündelt die Eingaben der Fragengenerierung
type GenerateRequest struct {
	Sentences  []string
	Keywords   []models.Keyword
	Topics     []models.Topic
	Count      int
	Difficulty string   // easy/medium/hard/all (leer = all)
	Types      []string // leer = ausgewogene Mischung 40/30/30
	Randomize  bool
}

// QuestionGenerator erzeugt Quizfragen aus Sätzen und Fragenzielen.
// Die Zufallsquelle wird injiziert, damit Tests mit festem Seed exakte
// Ergebnisse prüfen können; die Distraktor-Tabellen sind unveränderliche
// Konstruktions-Konfiguration.
type QuestionGenerator struct {
	rng        *rand.Rand
	categories map[string][]string
	generic    []string
}

// NewQuestionGenerator erstellt einen Generator. Ohne Zufallsquelle wird
// zeitbasiert geseedet.
func NewQuestionGenerator(rng *rand.Rand) *QuestionGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionGenerator{
		rng:        rng,
		categories: defaultCategoryDistractors(),
		generic:    defaultGenericDistractors(),
	}
}

// Generate erzeugt bis zu Count Fragen. Findet sich für ein Ziel kein
// Stützsatz, wird der Platz übersprungen: weniger Fragen als
// angefordert sind ein gültiges Ergebnis, nie werden Fragen erfunden.
func (g *QuestionGenerator) Generate(req GenerateRequest) ([]models.Question, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("ungültige fragenanzahl: %d", req.Count)
	}
	for _, typ := range req.Types {
		switch typ {
		case models.QuestionMCQ, models.QuestionFillInBlank, models.QuestionTrueFalse:
		default:
			return nil, fmt.Errorf("unbekannter fragetyp: %q", typ)
		}
	}
	switch req.Difficulty {
	case "", models.DifficultyAll, models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return nil, fmt.Errorf("unbekannte schwierigkeit: %q", req.Difficulty)
	}

	terms := g.termPool(req.Keywords, req.Topics, req.Difficulty)
	questions := []models.Question{}
	if len(terms) == 0 || len(req.Sentences) == 0 {
		return questions, nil
	}

	seenPrompts := make(map[string]struct{})

	for slot := 0; slot < req.Count; slot++ {
		term := terms[slot%len(terms)]
		topic := g.pickTopic(req.Topics)

		candidates := sentencesContaining(req.Sentences, term.TermText())
		if len(candidates) == 0 {
			continue
		}
		sentence := candidates[g.rng.Intn(len(candidates))]

		var question models.Question
		switch g.pickType(slot, req.Count, req.Types) {
		case models.QuestionMCQ:
			question = g.buildMCQ(sentence, term, terms, topic)
		case models.QuestionFillInBlank:
			question = g.buildFillInBlank(sentence, term, topic)
		case models.QuestionTrueFalse:
			question = g.buildTrueFalse(sentence, term, terms, topic)
		}

		if _, dup := seenPrompts[question.Prompt]; dup {
			continue
		}
		seenPrompts[question.Prompt] = struct{}{}
		questions = append(questions, question)
	}

	if req.Randomize {
		g.shuffleQuestions(questions)
	}
	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}
	return questions, nil
}

// termPool baut die Zielliste: Schlüsselbegriffe in Score-Reihenfolge,
// dahinter Themennamen, die nicht schon als Begriff vorkommen. Eine
// gewünschte Schwierigkeit filtert nach der abgeleiteten Schwierigkeit
// ("all" oder leer lässt alles durch).
func (g *QuestionGenerator) termPool(keywords []models.Keyword, topics []models.Topic, difficulty string) []Term {
	filter := difficulty != "" && difficulty != models.DifficultyAll

	var terms []Term
	seen := make(map[string]struct{}, len(keywords))

	for _, kw := range keywords {
		if filter && KeywordDifficulty(kw.Score) != difficulty {
			continue
		}
		key := strings.ToLower(kw.Word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, KeywordTerm{kw})
	}

	for _, topic := range topics {
		if filter && KeywordDifficulty(topic.Importance) != difficulty {
			continue
		}
		key := strings.ToLower(topic.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, TopicTerm{topic})
	}

	return terms
}

// pickType wählt den Fragetyp: gleichverteilt über die angeforderten
// Typen, oder nach fester Quote 40% mcq / 30% true-false / 30%
// fill-in-blank, wenn keine Typen vorgegeben sind (ausgewogener Satz)
func (g *QuestionGenerator) pickType(slot, count int, types []string) string {
	if len(types) == 1 {
		return types[0]
	}
	if len(types) > 1 {
		return types[g.rng.Intn(len(types))]
	}

	position := float64(slot) / float64(count)
	switch {
	case position < 0.4:
		return models.QuestionMCQ
	case position < 0.7:
		return models.QuestionTrueFalse
	default:
		return models.QuestionFillInBlank
	}
}

func (g *QuestionGenerator) pickTopic(topics []models.Topic) string {
	if len(topics) == 0 {
		return "General"
	}
	return topics[g.rng.Intn(len(topics))].Name
}

// buildMCQ erzeugt eine Multiple-Choice-Frage: das Ziel wird im
// Stützsatz durch eine Lücke ersetzt, die korrekte Option ist das Ziel
// selbst, dazu drei Distraktoren
func (g *QuestionGenerator) buildMCQ(sentence string, term Term, all []Term, topic string) models.Question {
	blanked := replaceInsensitive(sentence, term.TermText(), "___")
	prompt := fmt.Sprintf("What does the following statement relate to: %q?", blanked)

	options := []models.Option{{Text: term.TermText(), IsCorrect: true}}
	for _, d := range g.distractors(term, all, 3) {
		options = append(options, models.Option{Text: d})
	}
	g.shuffleOptions(options)

	return models.Question{
		ID:         uuid.NewString(),
		Prompt:     prompt,
		Type:       models.QuestionMCQ,
		Options:    options,
		Difficulty: KeywordDifficulty(term.TermScore()),
		Topic:      topic,
		Keywords:   []string{term.TermText()},
		Explanation: fmt.Sprintf("The correct answer is %q as it appears in the context of the given statement (%d occurrences in the source material).",
			term.TermText(), term.TermFrequency()),
	}
}

// buildFillInBlank erzeugt eine Lückentext-Frage. Die kanonische Antwort
// ist kleingeschrieben, Groß-/Kleinschreibvarianten gelten ebenfalls.
func (g *QuestionGenerator) buildFillInBlank(sentence string, term Term, topic string) models.Question {
	blanked := replaceInsensitive(sentence, term.TermText(), "____")
	canonical := strings.ToLower(term.TermText())

	accepted := []string{canonical}
	if term.TermText() != canonical {
		accepted = append(accepted, term.TermText())
	}

	return models.Question{
		ID:              uuid.NewString(),
		Prompt:          "Fill in the blank: " + blanked,
		Type:            models.QuestionFillInBlank,
		CorrectAnswer:   canonical,
		AcceptedAnswers: accepted,
		Difficulty:      KeywordDifficulty(term.TermScore()),
		Topic:           topic,
		Keywords:        []string{term.TermText()},
		Explanation:     fmt.Sprintf("The missing word is %q based on the context.", canonical),
	}
}

// buildTrueFalse erzeugt eine Wahr/Falsch-Frage: der Satz wird zu 50%
// wörtlich übernommen (Antwort True) oder das Ziel gegen einen
// Distraktor getauscht (Antwort False)
func (g *QuestionGenerator) buildTrueFalse(sentence string, term Term, all []Term, topic string) models.Question {
	isTrue := g.rng.Intn(2) == 0

	statement := sentence
	answer := "True"
	explanation := "The statement is true: it is taken verbatim from the source material."

	if !isTrue {
		distractor := g.distractors(term, all, 1)[0]
		statement = replaceInsensitive(sentence, term.TermText(), distractor)
		answer = "False"
		explanation = fmt.Sprintf("The statement is false: the source material uses %q where the statement says %q.",
			strings.ToLower(term.TermText()), distractor)
	}

	return models.Question{
		ID:            uuid.NewString(),
		Prompt:        "True or False: " + terminate(statement),
		Type:          models.QuestionTrueFalse,
		CorrectAnswer: answer,
		Difficulty:    KeywordDifficulty(term.TermScore()),
		Topic:         topic,
		Keywords:      []string{term.TermText()},
		Explanation:   explanation,
	}
}

// distractors liefert n plausible Falschantworten: bevorzugt andere
// Fragenziele, dann die Themenfeld-Tabelle, zuletzt der generische
// Pool. Alle Einträge sind untereinander und zum Ziel verschieden.
func (g *QuestionGenerator) distractors(term Term, all []Term, n int) []string {
	used := map[string]struct{}{strings.ToLower(term.TermText()): {}}
	var result []string

	add := func(candidate string) bool {
		key := strings.ToLower(candidate)
		if _, ok := used[key]; ok {
			return false
		}
		used[key] = struct{}{}
		result = append(result, candidate)
		return len(result) >= n
	}

	for _, other := range all {
		if len(result) >= n {
			return result
		}
		add(other.TermText())
	}

	pool := g.categoryPool(term.TermText())
	// Zufällige Startposition, damit nicht immer dieselben Einträge fallen
	offset := g.rng.Intn(len(pool))
	for i := 0; i < len(pool) && len(result) < n; i++ {
		add(pool[(offset+i)%len(pool)])
	}
	for i := 0; i < len(g.generic) && len(result) < n; i++ {
		add(g.generic[i])
	}

	// Notnagel, falls selbst der generische Pool erschöpft ist
	for len(result) < n {
		result = append(result, fmt.Sprintf("alternative %d", len(result)+1))
	}
	return result
}

// categoryPool findet die Distraktor-Tabelle zum Themenfeld des Ziels
func (g *QuestionGenerator) categoryPool(word string) []string {
	lower := strings.ToLower(word)
	for category, pool := range g.categories {
		if strings.Contains(lower, category) || strings.Contains(category, lower) {
			return pool
		}
	}
	return g.generic
}

// shuffleOptions mischt Antwortoptionen per Fisher-Yates
func (g *QuestionGenerator) shuffleOptions(options []models.Option) {
	for i := len(options) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}

// shuffleQuestions mischt die Fragenreihenfolge per Fisher-Yates
func (g *QuestionGenerator) shuffleQuestions(questions []models.Question) {
	for i := len(questions) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}

// sentencesContaining liefert alle Sätze, die das Ziel enthalten
// (Teilstring-Vergleich ohne Beachtung der Groß-/Kleinschreibung)
func sentencesContaining(sentences []string, term string) []string {
	needle := strings.ToLower(term)
	var hits []string
	for _, sentence := range sentences {
		if strings.Contains(strings.ToLower(sentence), needle) {
			hits = append(hits, sentence)
		}
	}
	return hits
}

// replaceInsensitive ersetzt jedes Vorkommen von term (ohne Beachtung
// der Groß-/Kleinschreibung) durch replacement. Der Vergleich faltet
// Rune für Rune, damit auch Zeichen mit abweichender Bytelänge der
// Kleinschreibung korrekt geschnitten werden.
func replaceInsensitive(s, term, replacement string) string {
	if term == "" {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if n := foldPrefixLen(s[i:], term); n > 0 {
			b.WriteString(replacement)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen liefert die Bytelänge des Präfixes von s, das term ohne
// Beachtung der Groß-/Kleinschreibung entspricht, sonst 0
func foldPrefixLen(s, term string) int {
	n := 0
	for _, tr := range term {
		sr, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(sr) != unicode.ToLower(tr) {
			return 0
		}
		n += size
	}
	return n
}
