package models

import "time"

// Schwierigkeitsgrade für Dokumente und Fragen
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyAll    = "all"
)

// Fragetypen
const (
	QuestionMCQ         = "mcq"
	QuestionFillInBlank = "fill-in-blank"
	QuestionTrueFalse   = "true-false"
)

// Document repräsentiert ein hochgeladenes Dokument (PDF/TXT) mit dem
// extrahierten Rohtext und den einmalig berechneten Analyse-Ergebnissen
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	Content     string    `json:"content,omitempty"`
	PageCount   int       `json:"page_count"`
	Summary     string    `json:"summary"`
	Keywords    []Keyword `json:"keywords"`
	Topics      []Topic   `json:"topics"`
	Metadata    Metadata  `json:"metadata"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// Keyword repräsentiert einen extrahierten Schlüsselbegriff.
// Score ist die Häufigkeit normalisiert auf die Dokumentlänge
// (bzw. der TF-IDF-Wert im dokumentübergreifenden Modus).
type Keyword struct {
	Word      string  `json:"word"`
	Score     float64 `json:"score"`
	Frequency int     `json:"frequency"`
}

// Topic repräsentiert eine Gruppe lexikalisch verwandter Schlüsselbegriffe.
// Importance ist der Mittelwert der Scores aller Mitglieder.
type Topic struct {
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Importance float64  `json:"importance"`
	Frequency  int      `json:"frequency"`
}

// SummaryResult repräsentiert eine extraktive Zusammenfassung
type SummaryResult struct {
	Text             string  `json:"summary"`
	SentenceCount    int     `json:"sentence_count"`
	CompressionRatio float64 `json:"compression_ratio"` // Prozent der Originallänge
}

// Metadata enthält die berechneten Kennzahlen eines Dokuments
type Metadata struct {
	WordCount           int    `json:"word_count"`
	SentenceCount       int    `json:"sentence_count"`
	AvgWordsPerSentence int    `json:"avg_words_per_sentence"`
	UniqueWordRatio     int    `json:"unique_word_ratio"` // Prozent
	Difficulty          string `json:"difficulty"`
	CompressionRatio    int    `json:"compression_ratio"` // Prozent
	ReadingTime         int    `json:"reading_time"`      // Minuten, ceil(Wörter/200)
}

// AnalysisResult bündelt alle Artefakte der Textanalyse.
// Die lokale Pipeline und die KI-Anreicherung liefern exakt diese Form.
type AnalysisResult struct {
	Summary  string    `json:"summary"`
	Keywords []Keyword `json:"keywords"`
	Topics   []Topic   `json:"topics"`
	Metadata Metadata  `json:"metadata"`
}

// Option repräsentiert eine Antwortmöglichkeit einer Multiple-Choice-Frage
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question repräsentiert eine generierte Quizfrage.
// Je nach Type sind Options (mcq) bzw. CorrectAnswer (fill-in-blank,
// true-false) gesetzt.
type Question struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"question"`
	Type            string   `json:"type"`
	Options         []Option `json:"options,omitempty"`
	CorrectAnswer   string   `json:"correct_answer,omitempty"`
	AcceptedAnswers []string `json:"accepted_answers,omitempty"`
	Difficulty      string   `json:"difficulty"`
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords,omitempty"`
	Explanation     string   `json:"explanation"`
}

// QuizSettings enthält die Einstellungen eines Quiz
type QuizSettings struct {
	TimeLimitMinutes    int  `json:"time_limit_minutes"`
	PassingScorePercent int  `json:"passing_score_percent"`
	RandomizeQuestions  bool `json:"randomize_questions"`
	ShowCorrectAnswers  bool `json:"show_correct_answers"`
	AllowRetake         bool `json:"allow_retake"`
}

// AnswerRecord repräsentiert eine bewertete Einzelantwort eines Versuchs
type AnswerRecord struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// Attempt repräsentiert einen abgeschlossenen Quizversuch.
// Versuche werden nur angehängt, nie verändert oder gelöscht.
type Attempt struct {
	ID          string         `json:"id"`
	QuizID      string         `json:"quiz_id"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Score       int            `json:"score"` // Anzahl korrekter Antworten
	Percentage  int            `json:"percentage"`
	Passed      bool           `json:"passed"`
	Answers     []AnswerRecord `json:"answers"`
	CompletedAt time.Time      `json:"completed_at"`
}

// QuizStats enthält die inkrementell gepflegten Statistiken eines Quiz
type QuizStats struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	BestScore     int     `json:"best_score"`
	AverageTime   float64 `json:"average_time"` // Minuten
}

// Quiz repräsentiert ein generiertes Quiz samt Fragen und Versuchen.
// Fragen sind nach der Generierung unveränderlich; eine Neugenerierung
// erzeugt ein neues Quiz.
type Quiz struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	SourceFiles []string     `json:"source_files"`
	Questions   []Question   `json:"questions"`
	Settings    QuizSettings `json:"settings"`
	Attempts    []Attempt    `json:"attempts,omitempty"`
	Stats       QuizStats    `json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
}

// UpdateStats aktualisiert die Quiz-Statistiken inkrementell um einen
// neuen Versuch (bestehende Versuche werden nicht neu aggregiert)
func (q *Quiz) UpdateStats(attempt Attempt) {
	q.Stats.TotalAttempts++

	if attempt.Score > q.Stats.BestScore {
		q.Stats.BestScore = attempt.Score
	}

	n := float64(q.Stats.TotalAttempts)
	totalScore := q.Stats.AverageScore*(n-1) + float64(attempt.Score)
	q.Stats.AverageScore = totalScore / n

	attemptMinutes := attempt.EndTime.Sub(attempt.StartTime).Minutes()
	totalTime := q.Stats.AverageTime*(n-1) + attemptMinutes
	q.Stats.AverageTime = totalTime / n
}
