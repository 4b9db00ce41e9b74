package pdf

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"lernquiz/internal/models"
)

// Parser extrahiert Rohtext aus hochgeladenen Dokumenten (PDF und TXT)
type Parser struct{}

// NewParser erstellt einen neuen Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parst eine einzelne Datei vom Dateisystem
func (p *Parser) ParseFile(filePath string) (*models.Document, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return p.parsePDFFile(filePath)
	case ".txt":
		return nil, fmt.Errorf("txt-dateien bitte über ParseFromReader einlesen")
	default:
		return nil, fmt.Errorf("nicht unterstütztes dateiformat: %s", filepath.Ext(filePath))
	}
}

// ParseFromReader parst ein Dokument aus einem io.Reader (für Uploads).
// Das Format wird an der Dateiendung erkannt.
func (p *Parser) ParseFromReader(reader io.Reader, filename string) (*models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen des Uploads: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return p.parsePDFBytes(data, filename)
	case ".txt":
		return p.parseText(data, filename)
	default:
		return nil, fmt.Errorf("nicht unterstütztes dateiformat: %s", filepath.Ext(filename))
	}
}

func (p *Parser) parsePDFFile(filePath string) (*models.Document, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("fehler beim Öffnen der PDF: %w", err)
	}
	defer f.Close()

	content, pages, err := extractPages(r)
	if err != nil {
		return nil, err
	}

	return newDocument(filepath.Base(filePath), "application/pdf", content, pages), nil
}

func (p *Parser) parsePDFBytes(data []byte, filename string) (*models.Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("fehler beim Lesen der PDF: %w", err)
	}

	content, pages, err := extractPages(r)
	if err != nil {
		return nil, err
	}

	doc := newDocument(filename, "application/pdf", content, pages)
	doc.Size = int64(len(data))
	return doc, nil
}

func (p *Parser) parseText(data []byte, filename string) (*models.Document, error) {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, fmt.Errorf("datei %s enthält keinen text", filename)
	}

	doc := newDocument(filename, "text/plain", content, 1)
	doc.Size = int64(len(data))
	return doc, nil
}

// extractPages sammelt den Klartext aller Seiten ein. Einzelne
// unlesbare Seiten werden übersprungen; ist am Ende gar kein Text
// vorhanden, ist das ein Fehler (z.B. reine Bild-PDFs).
func extractPages(r *pdf.Reader) (string, int, error) {
	var content strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		content.WriteString(text)
		content.WriteString("\n")
	}

	extracted := strings.TrimSpace(content.String())
	if extracted == "" {
		return "", 0, fmt.Errorf("pdf enthält keinen extrahierbaren text")
	}

	return extracted, totalPages, nil
}

func newDocument(name, mimeType, content string, pages int) *models.Document {
	now := time.Now()
	return &models.Document{
		ID:          uuid.NewString(),
		Name:        name,
		MimeType:    mimeType,
		Content:     content,
		PageCount:   pages,
		UploadedAt:  now,
		ProcessedAt: now,
	}
}
