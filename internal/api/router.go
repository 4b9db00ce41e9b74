package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter erstellt den HTTP-Router mit allen Endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	// API-Version
	api := r.PathPrefix("/api/v1").Subrouter()

	// System
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")

	// Dokumente
	api.HandleFunc("/documents", h.GetDocuments).Methods("GET")
	api.HandleFunc("/documents", h.UploadDocument).Methods("POST")
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/documents/{id}/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/documents/{id}/summary/structured", h.GetStructuredSummary).Methods("GET")
	api.HandleFunc("/documents/{id}/topics", h.GetTopics).Methods("GET")

	// Dokumentübergreifende Zusammenfassung
	api.HandleFunc("/summaries/bulk", h.BulkSummary).Methods("POST")

	// Quizzes
	api.HandleFunc("/quizzes", h.GetQuizzes).Methods("GET")
	api.HandleFunc("/quizzes/generate", h.GenerateQuiz).Methods("POST")
	api.HandleFunc("/quizzes/{id}", h.GetQuiz).Methods("GET")
	api.HandleFunc("/quizzes/{id}", h.DeleteQuiz).Methods("DELETE")
	api.HandleFunc("/quizzes/{id}/submit", h.SubmitQuiz).Methods("POST")
	api.HandleFunc("/quizzes/{id}/live", h.LiveQuiz).Methods("GET")

	// CORS für lokale Entwicklung
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
