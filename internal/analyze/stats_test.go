package analyze

import (
	"math"
	"testing"
)

func TestFrequencies(t *testing.T) {
	got := Frequencies([]string{"cat", "dog", "cat", "cat"})
	if got["cat"] != 3 || got["dog"] != 1 {
		t.Errorf("Frequencies() = %v, want cat=3 dog=1", got)
	}
}

func TestCorpusIDF(t *testing.T) {
	c := NewCorpus()
	c.AddDocument("cats chase mice")
	c.AddDocument("dogs chase balls")

	if n := c.DocumentCount(); n != 2 {
		t.Fatalf("DocumentCount() = %d, want 2", n)
	}

	tests := []struct {
		term string
		want float64
	}{
		{"chase", 0},         // in beiden Dokumenten
		{"cat", math.Log(2)}, // nur im ersten
		{"unbekannt", 0},     // in keinem
	}

	for _, tt := range tests {
		if got := c.IDF(tt.term); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("IDF(%q) = %f, want %f", tt.term, got, tt.want)
		}
	}
}

func TestCorpusTF(t *testing.T) {
	c := NewCorpus()
	c.AddDocument("cats chase mice")

	if got := c.TF("cat", 0); math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("TF(cat, 0) = %f, want %f", got, 1.0/3.0)
	}
	if got := c.TF("cat", 5); got != 0 {
		t.Errorf("TF mit ungültigem Index = %f, want 0", got)
	}
}

func TestTopKeywords(t *testing.T) {
	c := NewCorpus()
	c.AddDocument("cats chase mice")
	c.AddDocument("dogs chase balls")

	got := c.TopKeywords("cats chase mice", 5)

	// "chase" hat IDF 0 und fällt heraus; "cat" und "mice" punkten gleich,
	// alphabetische Reihenfolge entscheidet
	if len(got) != 2 {
		t.Fatalf("TopKeywords() lieferte %d Begriffe, want 2", len(got))
	}
	if got[0].Word != "cat" || got[1].Word != "mice" {
		t.Errorf("TopKeywords() = [%s %s], want [cat mice]", got[0].Word, got[1].Word)
	}
	if got[0].Score <= 0 {
		t.Errorf("Score = %f, want > 0", got[0].Score)
	}
}

func TestTopKeywordsEmpty(t *testing.T) {
	c := NewCorpus()
	if got := c.TopKeywords("", 5); len(got) != 0 {
		t.Errorf("TopKeywords auf leerem Text = %v, want leer", got)
	}
}
