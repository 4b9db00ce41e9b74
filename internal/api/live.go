package api

import (
	"log"
	"net/http"
	"time"

	"lernquiz/internal/models"
)

// Nachrichten des Live-Quiz-Protokolls
type liveQuestion struct {
	Type     string          `json:"type"` // "question"
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Question models.Question `json:"question"`
}

type liveAnswer struct {
	Type   string `json:"type"` // "answer"
	Answer string `json:"answer"`
}

type liveResult struct {
	Type          string `json:"type"` // "result"
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

type liveComplete struct {
	Type       string           `json:"type"` // "complete"
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Passed     bool             `json:"passed"`
	Stats      models.QuizStats `json:"stats"`
}

// LiveQuiz führt ein Quiz über eine Websocket-Verbindung durch: Fragen
// werden einzeln gestellt und sofort bewertet. Am Ende wird der Versuch
// wie bei SubmitQuiz angehängt und die Statistik aktualisiert.
func (h *Handler) LiveQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  Websocket-Upgrade fehlgeschlagen: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("🎮 Live-Quiz gestartet: %s", quiz.Title)

	startTime := time.Now()
	answers := make(map[string]string, len(quiz.Questions))

	for i, q := range quiz.Questions {
		sanitized := sanitizeQuiz(&models.Quiz{Questions: []models.Question{q}}).Questions[0]

		if err := conn.WriteJSON(liveQuestion{
			Type:     "question",
			Index:    i + 1,
			Total:    len(quiz.Questions),
			Question: sanitized,
		}); err != nil {
			log.Printf("⚠️  Live-Quiz abgebrochen: %v", err)
			return
		}

		var answer liveAnswer
		if err := conn.ReadJSON(&answer); err != nil {
			log.Printf("⚠️  Live-Quiz abgebrochen: %v", err)
			return
		}
		answers[q.ID] = answer.Answer

		correct, correctAnswer := gradeQuestion(q, answer.Answer)
		result := liveResult{Type: "result", IsCorrect: correct}
		if quiz.Settings.ShowCorrectAnswers {
			result.CorrectAnswer = correctAnswer
			result.Explanation = q.Explanation
		}
		if err := conn.WriteJSON(result); err != nil {
			log.Printf("⚠️  Live-Quiz abgebrochen: %v", err)
			return
		}
	}

	attempt := gradeAttempt(quiz, answers, startTime, time.Now())

	if err := h.store.SaveAttempt(&attempt); err != nil {
		log.Printf("⚠️  Live-Versuch konnte nicht gespeichert werden: %v", err)
	} else {
		quiz.UpdateStats(attempt)
		if err := h.store.SaveQuiz(quiz); err != nil {
			log.Printf("⚠️  Statistiken konnten nicht gespeichert werden: %v", err)
		}
	}

	conn.WriteJSON(liveComplete{
		Type:       "complete",
		Score:      attempt.Score,
		Total:      len(quiz.Questions),
		Percentage: attempt.Percentage,
		Passed:     attempt.Passed,
		Stats:      quiz.Stats,
	})

	log.Printf("🏁 Live-Quiz beendet: %s (%d/%d korrekt)", quiz.Title, attempt.Score, len(quiz.Questions))
}
