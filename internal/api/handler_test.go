package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lernquiz/internal/config"
	"lernquiz/internal/models"
	"lernquiz/internal/storage"
)

const studyText = "Photosynthesis is the process used by plants to convert light. The light energy becomes chemical energy inside chloroplasts. Water and carbon dioxide serve as the raw materials. Oxygen is released as a byproduct of the reaction. Chlorophyll absorbs mostly red and blue light wavelengths. Photosynthesis sustains nearly all life on this planet."

func newTestServer(t *testing.T) (*httptest.Server, storage.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage konnte nicht erstellt werden: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, nil, config.Default())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	return srv, store
}

func uploadTextFile(t *testing.T, srv *httptest.Server, filename, content string) models.Document {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	resp, err := http.Post(srv.URL+"/api/v1/documents", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("Upload fehlgeschlagen: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Upload-Status = %d, want 201", resp.StatusCode)
	}

	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("Antwort unlesbar: %v", err)
	}
	return doc
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["ai_available"] != false {
		t.Error("ai_available = true ohne Provider")
	}
}

func TestUploadDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	doc := uploadTextFile(t, srv, "photosynthesis.txt", studyText)

	if doc.ID == "" {
		t.Error("Dokument ohne ID")
	}
	if doc.Content != "" {
		t.Error("Antwort enthält den Rohtext")
	}
	if doc.Summary == "" {
		t.Error("Zusammenfassung fehlt")
	}
	if len(doc.Keywords) == 0 {
		t.Error("Schlüsselbegriffe fehlen")
	}
	if doc.Metadata.WordCount == 0 {
		t.Error("Kennzahlen fehlen")
	}
}

func TestUploadDocumentRejectsUnsupported(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "image.png")
	part.Write([]byte("not text"))
	writer.Close()

	resp, err := http.Post(srv.URL+"/api/v1/documents", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", resp.StatusCode)
	}
}

func TestGetSummaryWithLength(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := uploadTextFile(t, srv, "notes.txt", studyText)

	resp, err := http.Get(srv.URL + "/api/v1/documents/" + doc.ID + "/summary?length=2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Summary       string `json:"summary"`
		SentenceCount int    `json:"sentence_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.SentenceCount != 2 {
		t.Errorf("SentenceCount = %d, want 2", body.SentenceCount)
	}
	if body.Summary == "" {
		t.Error("Zusammenfassung leer")
	}
}

func TestGetSummaryInvalidLength(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := uploadTextFile(t, srv, "notes.txt", studyText)

	resp, err := http.Get(srv.URL + "/api/v1/documents/" + doc.ID + "/summary?length=abc")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", resp.StatusCode)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/documents/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}
}

func TestGetStructuredSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := uploadTextFile(t, srv, "notes.txt", studyText)

	resp, err := http.Get(srv.URL + "/api/v1/documents/" + doc.ID + "/summary/structured")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.Summary, "KEY TAKEAWAYS") {
		t.Errorf("strukturierte Zusammenfassung unvollständig:\n%s", body.Summary)
	}
}

func generateQuiz(t *testing.T, srv *httptest.Server, docIDs []string) models.Quiz {
	t.Helper()

	payload, _ := json.Marshal(map[string]interface{}{
		"document_ids": docIDs,
		"count":        5,
	})
	resp, err := http.Post(srv.URL+"/api/v1/quizzes/generate", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Generate-Status = %d, want 201", resp.StatusCode)
	}

	var quiz models.Quiz
	if err := json.NewDecoder(resp.Body).Decode(&quiz); err != nil {
		t.Fatal(err)
	}
	return quiz
}

func TestGenerateQuizHidesAnswers(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := uploadTextFile(t, srv, "notes.txt", studyText)

	quiz := generateQuiz(t, srv, []string{doc.ID})

	if len(quiz.Questions) == 0 {
		t.Fatal("Quiz ohne Fragen")
	}
	for _, q := range quiz.Questions {
		if q.CorrectAnswer != "" {
			t.Errorf("Frage %s verrät die Antwort", q.ID)
		}
		if len(q.AcceptedAnswers) != 0 {
			t.Errorf("Frage %s verrät akzeptierte Antworten", q.ID)
		}
		for _, opt := range q.Options {
			if opt.IsCorrect {
				t.Errorf("Frage %s markiert die korrekte Option", q.ID)
			}
		}
	}

	if quiz.Settings.PassingScorePercent != 60 {
		t.Errorf("PassingScorePercent = %d, want 60", quiz.Settings.PassingScorePercent)
	}
	if quiz.Settings.TimeLimitMinutes != 2*len(quiz.Questions) {
		t.Errorf("TimeLimitMinutes = %d, want %d", quiz.Settings.TimeLimitMinutes, 2*len(quiz.Questions))
	}
}

func TestGenerateQuizWithoutDocuments(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/quizzes/generate", "application/json",
		strings.NewReader(`{"document_ids": []}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", resp.StatusCode)
	}
}

func TestSubmitQuiz(t *testing.T) {
	srv, store := newTestServer(t)

	quiz := &models.Quiz{
		ID:    "quiz-1",
		Title: "Testquiz",
		Questions: []models.Question{
			{
				ID:     "q-1",
				Prompt: "What does the following statement relate to: \"___ converts light\"?",
				Type:   models.QuestionMCQ,
				Options: []models.Option{
					{Text: "Photosynthesis", IsCorrect: true},
					{Text: "Respiration"},
					{Text: "Osmosis"},
					{Text: "Diffusion"},
				},
				Difficulty: models.DifficultyEasy,
			},
			{
				ID:              "q-2",
				Prompt:          "Fill in the blank: ____ absorbs light",
				Type:            models.QuestionFillInBlank,
				CorrectAnswer:   "chlorophyll",
				AcceptedAnswers: []string{"chlorophyll", "Chlorophyll"},
				Difficulty:      models.DifficultyMedium,
			},
			{
				ID:            "q-3",
				Prompt:        "True or False: Oxygen is released.",
				Type:          models.QuestionTrueFalse,
				CorrectAnswer: "True",
				Difficulty:    models.DifficultyEasy,
			},
		},
		Settings:  models.QuizSettings{PassingScorePercent: 60, ShowCorrectAnswers: true},
		CreatedAt: time.Now(),
	}
	if err := store.SaveQuiz(quiz); err != nil {
		t.Fatal(err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"answers": map[string]string{
			"q-1": "photosynthesis", // Groß-/Kleinschreibung egal
			"q-2": " Chlorophyll ",  // Whitespace egal
			"q-3": "False",          // falsch
		},
		"start_time": time.Now().Add(-3 * time.Minute),
	})

	resp, err := http.Post(srv.URL+"/api/v1/quizzes/quiz-1/submit", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		Score      int                   `json:"score"`
		Total      int                   `json:"total"`
		Percentage int                   `json:"percentage"`
		Passed     bool                  `json:"passed"`
		Answers    []models.AnswerRecord `json:"answers"`
		Stats      models.QuizStats      `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}

	if result.Score != 2 || result.Total != 3 {
		t.Errorf("Score = %d/%d, want 2/3", result.Score, result.Total)
	}
	if result.Percentage != 66 {
		t.Errorf("Percentage = %d, want 66", result.Percentage)
	}
	if !result.Passed {
		t.Error("Passed = false bei 66% und Schwelle 60%")
	}
	if len(result.Answers) != 3 {
		t.Fatalf("%d Antwort-Datensätze, want 3", len(result.Answers))
	}
	if result.Stats.TotalAttempts != 1 || result.Stats.BestScore != 2 {
		t.Errorf("Stats = %+v", result.Stats)
	}

	// Zweiter Versuch: Statistiken werden inkrementell gepflegt
	resp2, err := http.Post(srv.URL+"/api/v1/quizzes/quiz-1/submit", "application/json",
		strings.NewReader(`{"answers": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()

	var second struct {
		Score int              `json:"score"`
		Stats models.QuizStats `json:"stats"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}
	if second.Score != 0 {
		t.Errorf("leere Abgabe erzielte %d Punkte", second.Score)
	}
	if second.Stats.TotalAttempts != 2 || second.Stats.BestScore != 2 {
		t.Errorf("Stats nach zweitem Versuch = %+v", second.Stats)
	}
	if second.Stats.AverageScore != 1 {
		t.Errorf("AverageScore = %f, want 1", second.Stats.AverageScore)
	}
}

func TestGradeQuestion(t *testing.T) {
	mcq := models.Question{
		Type: models.QuestionMCQ,
		Options: []models.Option{
			{Text: "Photosynthesis", IsCorrect: true},
			{Text: "Respiration"},
		},
	}
	fib := models.Question{
		Type:            models.QuestionFillInBlank,
		CorrectAnswer:   "chlorophyll",
		AcceptedAnswers: []string{"chlorophyll", "Chlorophyll"},
	}
	tf := models.Question{
		Type:          models.QuestionTrueFalse,
		CorrectAnswer: "True",
	}

	tests := []struct {
		name     string
		question models.Question
		answer   string
		want     bool
	}{
		{"mcq exakt", mcq, "Photosynthesis", true},
		{"mcq andere schreibweise", mcq, "PHOTOSYNTHESIS", true},
		{"mcq falsche option", mcq, "Respiration", false},
		{"mcq leer", mcq, "", false},
		{"fib akzeptierte variante", fib, "Chlorophyll", true},
		{"fib mit whitespace", fib, "  chlorophyll  ", true},
		{"fib falsch", fib, "carotene", false},
		{"tf korrekt", tf, "true", true},
		{"tf falsch", tf, "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := gradeQuestion(tt.question, tt.answer)
			if got != tt.want {
				t.Errorf("gradeQuestion(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestBulkSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	doc1 := uploadTextFile(t, srv, "one.txt", studyText)
	doc2 := uploadTextFile(t, srv, "two.txt", "The water cycle describes the continuous movement of water. Evaporation lifts water vapor into the atmosphere above. Condensation forms clouds from the rising vapor. Precipitation returns the water back to the surface.")

	payload, _ := json.Marshal(map[string]interface{}{
		"document_ids": []string{doc1.ID, doc2.ID},
		"length":       2,
	})
	resp, err := http.Post(srv.URL+"/api/v1/summaries/bulk", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Count     int    `json:"count"`
		Combined  string `json:"combined"`
		Documents []struct {
			DocumentID    string           `json:"document_id"`
			Summary       string           `json:"summary"`
			DistinctTerms []models.Keyword `json:"distinct_terms"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Fatalf("Count = %d, want 2", body.Count)
	}
	if body.Combined == "" {
		t.Error("Gesamtzusammenfassung fehlt")
	}
	for _, d := range body.Documents {
		if d.Summary == "" {
			t.Errorf("Dokument %s ohne Zusammenfassung", d.DocumentID)
		}
		if len(d.DistinctTerms) == 0 {
			t.Errorf("Dokument %s ohne unterscheidende Begriffe", d.DocumentID)
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	srv, _ := newTestServer(t)
	doc := uploadTextFile(t, srv, "notes.txt", studyText)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/documents/"+doc.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/documents/" + doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("gelöschtes Dokument liefert Status %d", getResp.StatusCode)
	}
}
