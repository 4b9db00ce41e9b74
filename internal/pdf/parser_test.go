package pdf

import (
	"strings"
	"testing"
)

func TestParseFromReaderText(t *testing.T) {
	p := NewParser()

	doc, err := p.ParseFromReader(strings.NewReader("Photosynthesis converts light into energy."), "notes.txt")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if doc.Name != "notes.txt" {
		t.Errorf("Name = %q, want notes.txt", doc.Name)
	}
	if doc.MimeType != "text/plain" {
		t.Errorf("MimeType = %q, want text/plain", doc.MimeType)
	}
	if doc.Content != "Photosynthesis converts light into energy." {
		t.Errorf("Content = %q", doc.Content)
	}
	if doc.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", doc.PageCount)
	}
	if doc.ID == "" {
		t.Error("Dokument ohne ID")
	}
	if doc.Size == 0 {
		t.Error("Size = 0")
	}
}

func TestParseFromReaderEmptyText(t *testing.T) {
	p := NewParser()

	if _, err := p.ParseFromReader(strings.NewReader("   \n  "), "empty.txt"); err == nil {
		t.Error("erwartete Fehler bei leerer Datei")
	}
}

func TestParseFromReaderUnsupported(t *testing.T) {
	p := NewParser()

	if _, err := p.ParseFromReader(strings.NewReader("data"), "image.png"); err == nil {
		t.Error("erwartete Fehler bei nicht unterstütztem Format")
	}
}

func TestParseFromReaderBrokenPDF(t *testing.T) {
	p := NewParser()

	if _, err := p.ParseFromReader(strings.NewReader("definitely not a pdf"), "broken.pdf"); err == nil {
		t.Error("erwartete Fehler bei kaputter PDF")
	}
}
