package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"lernquiz/internal/models"

	_ "modernc.org/sqlite"
)

// Storage definiert das Interface für Datenpersistenz
type Storage interface {
	// Dokumente
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	GetAllDocuments() ([]models.Document, error)
	DeleteDocument(id string) error

	// Quizzes
	SaveQuiz(quiz *models.Quiz) error
	GetQuiz(id string) (*models.Quiz, error)
	GetAllQuizzes() ([]models.Quiz, error)
	DeleteQuiz(id string) error

	// Versuche (nur anhängen, nie ändern)
	SaveAttempt(attempt *models.Attempt) error
	GetAttemptsByQuiz(quizID string) ([]models.Attempt, error)

	Close() error
}

// SQLiteStorage implementiert Storage mit SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage erstellt eine neue SQLite-Storage-Instanz
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mime_type TEXT,
		size INTEGER,
		content TEXT,
		page_count INTEGER,
		summary TEXT,
		keywords TEXT,
		topics TEXT,
		metadata TEXT,
		uploaded_at DATETIME,
		processed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		source_files TEXT,
		questions TEXT,
		settings TEXT,
		stats TEXT,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		start_time DATETIME,
		end_time DATETIME,
		score INTEGER,
		percentage INTEGER,
		passed INTEGER,
		answers TEXT,
		completed_at DATETIME,
		FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_quiz ON attempts(quiz_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Dokumente

func (s *SQLiteStorage) SaveDocument(doc *models.Document) error {
	keywords, _ := json.Marshal(doc.Keywords)
	topics, _ := json.Marshal(doc.Topics)
	metadata, _ := json.Marshal(doc.Metadata)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO documents (id, name, mime_type, size, content, page_count, summary, keywords, topics, metadata, uploaded_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Name, doc.MimeType, doc.Size, doc.Content, doc.PageCount, doc.Summary,
		string(keywords), string(topics), string(metadata), doc.UploadedAt, doc.ProcessedAt)
	return err
}

func (s *SQLiteStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	var keywords, topics, metadata string
	err := s.db.QueryRow(`
		SELECT id, name, mime_type, size, content, page_count, summary, keywords, topics, metadata, uploaded_at, processed_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Name, &doc.MimeType, &doc.Size, &doc.Content, &doc.PageCount,
		&doc.Summary, &keywords, &topics, &metadata, &doc.UploadedAt, &doc.ProcessedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(keywords), &doc.Keywords)
	json.Unmarshal([]byte(topics), &doc.Topics)
	json.Unmarshal([]byte(metadata), &doc.Metadata)
	return &doc, nil
}

// GetAllDocuments lädt alle Dokumente ohne den Rohtext (Listenansicht)
func (s *SQLiteStorage) GetAllDocuments() ([]models.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, name, mime_type, size, page_count, summary, keywords, topics, metadata, uploaded_at, processed_at
		FROM documents ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		var keywords, topics, metadata string
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.MimeType, &doc.Size, &doc.PageCount,
			&doc.Summary, &keywords, &topics, &metadata, &doc.UploadedAt, &doc.ProcessedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(keywords), &doc.Keywords)
		json.Unmarshal([]byte(topics), &doc.Topics)
		json.Unmarshal([]byte(metadata), &doc.Metadata)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) DeleteDocument(id string) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

// Quizzes

func (s *SQLiteStorage) SaveQuiz(quiz *models.Quiz) error {
	sourceFiles, _ := json.Marshal(quiz.SourceFiles)
	questions, _ := json.Marshal(quiz.Questions)
	settings, _ := json.Marshal(quiz.Settings)
	stats, _ := json.Marshal(quiz.Stats)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO quizzes (id, title, description, source_files, questions, settings, stats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quiz.ID, quiz.Title, quiz.Description, string(sourceFiles), string(questions),
		string(settings), string(stats), quiz.CreatedAt)
	return err
}

func (s *SQLiteStorage) GetQuiz(id string) (*models.Quiz, error) {
	var quiz models.Quiz
	var sourceFiles, questions, settings, stats string
	err := s.db.QueryRow(`
		SELECT id, title, description, source_files, questions, settings, stats, created_at
		FROM quizzes WHERE id = ?
	`, id).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &sourceFiles, &questions, &settings, &stats, &quiz.CreatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(sourceFiles), &quiz.SourceFiles)
	json.Unmarshal([]byte(questions), &quiz.Questions)
	json.Unmarshal([]byte(settings), &quiz.Settings)
	json.Unmarshal([]byte(stats), &quiz.Stats)

	quiz.Attempts, _ = s.GetAttemptsByQuiz(quiz.ID)
	return &quiz, nil
}

// GetAllQuizzes lädt alle Quizzes ohne deren Versuche (Listenansicht)
func (s *SQLiteStorage) GetAllQuizzes() ([]models.Quiz, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, source_files, questions, settings, stats, created_at
		FROM quizzes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var quiz models.Quiz
		var sourceFiles, questions, settings, stats string
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &sourceFiles, &questions, &settings, &stats, &quiz.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(sourceFiles), &quiz.SourceFiles)
		json.Unmarshal([]byte(questions), &quiz.Questions)
		json.Unmarshal([]byte(settings), &quiz.Settings)
		json.Unmarshal([]byte(stats), &quiz.Stats)
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *SQLiteStorage) DeleteQuiz(id string) error {
	if _, err := s.db.Exec(`DELETE FROM attempts WHERE quiz_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM quizzes WHERE id = ?`, id)
	return err
}

// Versuche

// SaveAttempt hängt einen Versuch an. INSERT ohne REPLACE: bestehende
// Versuche sind unveränderlich.
func (s *SQLiteStorage) SaveAttempt(attempt *models.Attempt) error {
	answers, _ := json.Marshal(attempt.Answers)

	_, err := s.db.Exec(`
		INSERT INTO attempts (id, quiz_id, start_time, end_time, score, percentage, passed, answers, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, attempt.ID, attempt.QuizID, attempt.StartTime, attempt.EndTime, attempt.Score,
		attempt.Percentage, boolToInt(attempt.Passed), string(answers), attempt.CompletedAt)
	if err != nil {
		return fmt.Errorf("versuch konnte nicht gespeichert werden: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetAttemptsByQuiz(quizID string) ([]models.Attempt, error) {
	rows, err := s.db.Query(`
		SELECT id, quiz_id, start_time, end_time, score, percentage, passed, answers, completed_at
		FROM attempts WHERE quiz_id = ? ORDER BY completed_at
	`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var attempt models.Attempt
		var answers string
		var passed int
		if err := rows.Scan(&attempt.ID, &attempt.QuizID, &attempt.StartTime, &attempt.EndTime,
			&attempt.Score, &attempt.Percentage, &passed, &answers, &attempt.CompletedAt); err != nil {
			return nil, err
		}
		attempt.Passed = passed != 0
		json.Unmarshal([]byte(answers), &attempt.Answers)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
