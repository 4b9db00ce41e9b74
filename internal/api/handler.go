package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"lernquiz/internal/analyze"
	"lernquiz/internal/config"
	"lernquiz/internal/llm"
	"lernquiz/internal/models"
	"lernquiz/internal/pdf"
	"lernquiz/internal/storage"
)

// Quiz-Standardeinstellungen
const (
	timeLimitPerQuestion = 2  // Minuten
	passingScorePercent  = 60 // Prozent
	maxUploadBytes       = 32 << 20
)

// Handler verwaltet alle API-Endpunkte
type Handler struct {
	store     storage.Storage
	analyzer  *analyze.Analyzer
	questions *analyze.QuestionGenerator
	enricher  *llm.Enricher
	provider  llm.Provider
	parser    *pdf.Parser
	config    *config.Config
	upgrader  websocket.Upgrader
}

// NewHandler erstellt einen neuen API-Handler. Der Provider darf nil
// sein; dann läuft ausschließlich die lokale Pipeline.
func NewHandler(store storage.Storage, provider llm.Provider, cfg *config.Config) *Handler {
	analyzer := analyze.NewAnalyzer()

	return &Handler{
		store:     store,
		analyzer:  analyzer,
		questions: analyze.NewQuestionGenerator(nil),
		enricher:  llm.NewEnricher(provider, analyzer, time.Duration(cfg.EnrichTimeoutSeconds)*time.Second),
		provider:  provider,
		parser:    pdf.NewParser(),
		config:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Response-Helper
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

// === System Endpoints ===

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	aiAvailable := false
	aiProvider := "none"
	if h.provider != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		aiAvailable = h.provider.IsAvailable(ctx)
		aiProvider = h.provider.GetName()
	}

	jsonResponse(w, map[string]interface{}{
		"status":       "ok",
		"ai_available": aiAvailable,
		"ai_provider":  aiProvider,
		"timestamp":    time.Now(),
	}, http.StatusOK)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	docs, _ := h.store.GetAllDocuments()
	quizzes, _ := h.store.GetAllQuizzes()

	jsonResponse(w, map[string]interface{}{
		"documents_count": len(docs),
		"quizzes_count":   len(quizzes),
		"ai_enabled":      h.config.UseAI && h.provider != nil,
	}, http.StatusOK)
}

// === Dokumente ===

// UploadDocument nimmt eine PDF- oder TXT-Datei entgegen, extrahiert
// den Text und analysiert ihn einmalig. Das Analyse-Ergebnis wird mit
// dem Dokument gespeichert; spätere Abrufe rechnen nicht neu.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		errorResponse(w, "Ungültiger Upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, "Keine Datei im Feld 'file'", http.StatusBadRequest)
		return
	}
	defer file.Close()

	doc, err := h.parser.ParseFromReader(file, header.Filename)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Datei konnte nicht verarbeitet werden: %v", err), http.StatusUnprocessableEntity)
		return
	}

	log.Printf("📄 Dokument hochgeladen: %s (%d Seiten)", doc.Name, doc.PageCount)

	analysis := h.analyzeDocument(r.Context(), doc.Content)
	doc.Summary = analysis.Summary
	doc.Keywords = analysis.Keywords
	doc.Topics = analysis.Topics
	doc.Metadata = analysis.Metadata
	doc.ProcessedAt = time.Now()

	if err := h.store.SaveDocument(doc); err != nil {
		errorResponse(w, fmt.Sprintf("Dokument konnte nicht gespeichert werden: %v", err), http.StatusInternalServerError)
		return
	}

	// Rohtext nicht zurückgeben, der Client bekommt die Artefakte
	doc.Content = ""
	jsonResponse(w, doc, http.StatusCreated)
}

// analyzeDocument nutzt die KI-Anreicherung, wenn konfiguriert, sonst
// die lokale Pipeline
func (h *Handler) analyzeDocument(ctx context.Context, text string) *models.AnalysisResult {
	if h.config.UseAI && h.provider != nil {
		return h.enricher.Enrich(ctx, text)
	}
	return h.analyzer.Analyze(text)
}

func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.GetAllDocuments()
	if err != nil {
		errorResponse(w, fmt.Sprintf("Dokumente konnten nicht geladen werden: %v", err), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	jsonResponse(w, docs, http.StatusOK)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	doc.Content = ""
	jsonResponse(w, doc, http.StatusOK)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteDocument(id); err != nil {
		errorResponse(w, fmt.Sprintf("Dokument konnte nicht gelöscht werden: %v", err), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// GetSummary liefert die Zusammenfassung. Mit ?length= wird mit der
// gewünschten Satzanzahl neu gerechnet, sonst kommt die beim Upload
// gespeicherte Fassung zurück.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}

	lengthParam := r.URL.Query().Get("length")
	if lengthParam == "" {
		jsonResponse(w, map[string]interface{}{
			"document_id": doc.ID,
			"summary":     doc.Summary,
		}, http.StatusOK)
		return
	}

	length, err := strconv.Atoi(lengthParam)
	if err != nil || length <= 0 {
		errorResponse(w, "Parameter 'length' muss eine positive Zahl sein", http.StatusBadRequest)
		return
	}

	summarizer := analyze.NewSummarizer(analyze.BoostContinuous)
	result, err := summarizer.Summarize(doc.Content, length)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Zusammenfassung fehlgeschlagen: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"document_id":       doc.ID,
		"summary":           result.Text,
		"sentence_count":    result.SentenceCount,
		"compression_ratio": result.CompressionRatio,
	}, http.StatusOK)
}

func (h *Handler) GetStructuredSummary(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}

	structured, err := h.analyzer.StructuredSummary(doc.Content, doc.Keywords, doc.Topics)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Zusammenfassung fehlgeschlagen: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"document_id": doc.ID,
		"summary":     structured,
	}, http.StatusOK)
}

func (h *Handler) GetTopics(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}

	jsonResponse(w, map[string]interface{}{
		"document_id": doc.ID,
		"keywords":    doc.Keywords,
		"topics":      doc.Topics,
	}, http.StatusOK)
}

// BulkSummary fasst mehrere Dokumente zusammen und bewertet ihre
// Begriffe dokumentübergreifend per TF-IDF
func (h *Handler) BulkSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"document_ids"`
		Length      int      `json:"length"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}
	if len(req.DocumentIDs) == 0 {
		errorResponse(w, "Keine Dokumente angegeben", http.StatusBadRequest)
		return
	}
	if req.Length <= 0 {
		req.Length = h.config.SummarySentences
	}

	corpus := analyze.NewCorpus()
	docs := make([]*models.Document, 0, len(req.DocumentIDs))
	var combined strings.Builder
	for _, id := range req.DocumentIDs {
		doc, err := h.store.GetDocument(id)
		if err != nil {
			errorResponse(w, fmt.Sprintf("Dokument %s nicht gefunden", id), http.StatusNotFound)
			return
		}
		corpus.AddDocument(doc.Content)
		docs = append(docs, doc)
		combined.WriteString(doc.Content)
		combined.WriteString(" ")
	}

	summarizer := analyze.NewSummarizer(analyze.BoostContinuous)
	results := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		summary, err := summarizer.Summarize(doc.Content, req.Length)
		if err != nil {
			errorResponse(w, fmt.Sprintf("Zusammenfassung fehlgeschlagen: %v", err), http.StatusInternalServerError)
			return
		}

		results = append(results, map[string]interface{}{
			"document_id":    doc.ID,
			"name":           doc.Name,
			"summary":        summary.Text,
			"distinct_terms": corpus.TopKeywords(doc.Content, 10),
		})
	}

	// Gesamtzusammenfassung über den verbundenen Text aller Dokumente
	overall, err := summarizer.Summarize(combined.String(), req.Length)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Zusammenfassung fehlgeschlagen: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"documents": results,
		"combined":  overall.Text,
		"count":     len(results),
	}, http.StatusOK)
}

// loadDocument lädt das Dokument aus dem Pfadparameter oder schreibt
// eine Fehlerantwort
func (h *Handler) loadDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	id := mux.Vars(r)["id"]
	doc, err := h.store.GetDocument(id)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Dokument %s nicht gefunden", id), http.StatusNotFound)
		return nil, false
	}
	return doc, true
}

// === Quizzes ===

// GenerateQuiz erzeugt ein Quiz aus einem oder mehreren Dokumenten.
// Fragen sind nach der Generierung unveränderlich.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"document_ids"`
		Title       string   `json:"title"`
		Count       int      `json:"count"`
		Difficulty  string   `json:"difficulty"`
		Types       []string `json:"types"`
		Randomize   *bool    `json:"randomize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}
	if len(req.DocumentIDs) == 0 {
		errorResponse(w, "Keine Dokumente angegeben", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = h.config.DefaultQuestionCount
	}

	var sentences []string
	var keywords []models.Keyword
	var topics []models.Topic
	var sourceNames []string

	// Dreifacher Kandidaten-Überhang, damit Dublettenfilter und
	// Schwierigkeitsfilter genug Begriffe übrig lassen
	for _, id := range req.DocumentIDs {
		doc, err := h.store.GetDocument(id)
		if err != nil {
			errorResponse(w, fmt.Sprintf("Dokument %s nicht gefunden", id), http.StatusNotFound)
			return
		}
		sentences = append(sentences, h.analyzer.Sentences(doc.Content)...)
		keywords = append(keywords, h.analyzer.Keywords(doc.Content, req.Count*3)...)
		topics = append(topics, doc.Topics...)
		sourceNames = append(sourceNames, doc.Name)
	}

	randomize := true
	if req.Randomize != nil {
		randomize = *req.Randomize
	}

	questions, err := h.questions.Generate(analyze.GenerateRequest{
		Sentences:  sentences,
		Keywords:   keywords,
		Topics:     topics,
		Count:      req.Count,
		Difficulty: req.Difficulty,
		Types:      req.Types,
		Randomize:  randomize,
	})
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fragengenerierung fehlgeschlagen: %v", err), http.StatusBadRequest)
		return
	}
	if len(questions) == 0 {
		errorResponse(w, "Aus den Dokumenten ließen sich keine Fragen generieren", http.StatusUnprocessableEntity)
		return
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Quiz: %s", strings.Join(sourceNames, ", "))
	}

	quiz := &models.Quiz{
		ID:          uuid.NewString(),
		Title:       title,
		SourceFiles: req.DocumentIDs,
		Questions:   questions,
		Settings: models.QuizSettings{
			TimeLimitMinutes:    timeLimitPerQuestion * len(questions),
			PassingScorePercent: passingScorePercent,
			RandomizeQuestions:  randomize,
			ShowCorrectAnswers:  true,
			AllowRetake:         true,
		},
		CreatedAt: time.Now(),
	}

	if err := h.store.SaveQuiz(quiz); err != nil {
		errorResponse(w, fmt.Sprintf("Quiz konnte nicht gespeichert werden: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("📝 Quiz generiert: %s (%d Fragen)", quiz.Title, len(quiz.Questions))
	jsonResponse(w, sanitizeQuiz(quiz), http.StatusCreated)
}

func (h *Handler) GetQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.store.GetAllQuizzes()
	if err != nil {
		errorResponse(w, fmt.Sprintf("Quizzes konnten nicht geladen werden: %v", err), http.StatusInternalServerError)
		return
	}

	sanitized := make([]*models.Quiz, 0, len(quizzes))
	for i := range quizzes {
		sanitized = append(sanitized, sanitizeQuiz(&quizzes[i]))
	}
	jsonResponse(w, sanitized, http.StatusOK)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	jsonResponse(w, sanitizeQuiz(quiz), http.StatusOK)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteQuiz(id); err != nil {
		errorResponse(w, fmt.Sprintf("Quiz konnte nicht gelöscht werden: %v", err), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// SubmitQuiz bewertet eingereichte Antworten, hängt den Versuch an und
// aktualisiert die Quiz-Statistiken inkrementell
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	var req struct {
		Answers   map[string]string `json:"answers"` // Frage-ID -> Antwort
		StartTime time.Time         `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	now := time.Now()
	startTime := req.StartTime
	if startTime.IsZero() {
		startTime = now
	}

	attempt := gradeAttempt(quiz, req.Answers, startTime, now)

	if err := h.store.SaveAttempt(&attempt); err != nil {
		errorResponse(w, fmt.Sprintf("Versuch konnte nicht gespeichert werden: %v", err), http.StatusInternalServerError)
		return
	}

	quiz.UpdateStats(attempt)
	if err := h.store.SaveQuiz(quiz); err != nil {
		errorResponse(w, fmt.Sprintf("Statistiken konnten nicht gespeichert werden: %v", err), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"attempt_id": attempt.ID,
		"score":      attempt.Score,
		"total":      len(quiz.Questions),
		"percentage": attempt.Percentage,
		"passed":     attempt.Passed,
		"stats":      quiz.Stats,
	}
	if quiz.Settings.ShowCorrectAnswers {
		response["answers"] = attempt.Answers
	}

	jsonResponse(w, response, http.StatusOK)
}

func (h *Handler) loadQuiz(w http.ResponseWriter, r *http.Request) (*models.Quiz, bool) {
	id := mux.Vars(r)["id"]
	quiz, err := h.store.GetQuiz(id)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Quiz %s nicht gefunden", id), http.StatusNotFound)
		return nil, false
	}
	return quiz, true
}

// gradeAttempt bewertet alle Fragen eines Quiz gegen die eingereichten
// Antworten. Unbeantwortete Fragen zählen als falsch.
func gradeAttempt(quiz *models.Quiz, answers map[string]string, startTime, endTime time.Time) models.Attempt {
	records := make([]models.AnswerRecord, 0, len(quiz.Questions))
	score := 0

	for _, q := range quiz.Questions {
		userAnswer := answers[q.ID]
		correct, correctAnswer := gradeQuestion(q, userAnswer)
		if correct {
			score++
		}
		records = append(records, models.AnswerRecord{
			QuestionID:    q.ID,
			UserAnswer:    userAnswer,
			CorrectAnswer: correctAnswer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		})
	}

	percentage := 0
	if len(quiz.Questions) > 0 {
		percentage = score * 100 / len(quiz.Questions)
	}

	return models.Attempt{
		ID:          uuid.NewString(),
		QuizID:      quiz.ID,
		StartTime:   startTime,
		EndTime:     endTime,
		Score:       score,
		Percentage:  percentage,
		Passed:      percentage >= quiz.Settings.PassingScorePercent,
		Answers:     records,
		CompletedAt: endTime,
	}
}

// gradeQuestion prüft eine Einzelantwort und liefert zusätzlich die
// korrekte Antwort für das Feedback
func gradeQuestion(q models.Question, userAnswer string) (bool, string) {
	normalized := strings.ToLower(strings.TrimSpace(userAnswer))

	switch q.Type {
	case models.QuestionMCQ:
		for _, opt := range q.Options {
			if opt.IsCorrect {
				return normalized == strings.ToLower(opt.Text), opt.Text
			}
		}
		return false, ""

	case models.QuestionFillInBlank:
		for _, accepted := range q.AcceptedAnswers {
			if normalized == strings.ToLower(strings.TrimSpace(accepted)) {
				return true, q.CorrectAnswer
			}
		}
		return normalized == strings.ToLower(q.CorrectAnswer), q.CorrectAnswer

	default: // true-false
		return normalized == strings.ToLower(q.CorrectAnswer), q.CorrectAnswer
	}
}

// sanitizeQuiz entfernt die Antwortschlüssel aus einem Quiz, bevor es
// an den Client geht. Das Original bleibt unverändert.
func sanitizeQuiz(quiz *models.Quiz) *models.Quiz {
	clean := *quiz
	clean.Questions = make([]models.Question, len(quiz.Questions))

	for i, q := range quiz.Questions {
		sq := q
		sq.CorrectAnswer = ""
		sq.AcceptedAnswers = nil
		sq.Explanation = ""
		if len(q.Options) > 0 {
			sq.Options = make([]models.Option, len(q.Options))
			for j, opt := range q.Options {
				sq.Options[j] = models.Option{Text: opt.Text}
			}
		}
		clean.Questions[i] = sq
	}

	return &clean
}
