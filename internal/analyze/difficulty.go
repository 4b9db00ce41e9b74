package analyze

import "lernquiz/internal/models"

// Schwellwerte der Schwierigkeits-Einstufung
const (
	hardWordCount       = 2000
	hardAvgWords        = 20.0
	hardUniqueRatio     = 0.4
	mediumWordCount     = 800
	mediumAvgWords      = 15.0
	keywordScoreEasyMin = 0.015
	keywordScoreMedMin  = 0.005
)

// ClassifyDifficulty stuft ein Dokument deterministisch ein. Die
// Bedingungen werden in fester Reihenfolge geprüft, der erste Treffer
// gewinnt: hard vor medium vor easy.
func ClassifyDifficulty(wordCount int, avgWordsPerSentence, uniqueWordRatio float64) string {
	if wordCount > hardWordCount && avgWordsPerSentence > hardAvgWords && uniqueWordRatio > hardUniqueRatio {
		return models.DifficultyHard
	}
	if wordCount > mediumWordCount && avgWordsPerSentence > mediumAvgWords {
		return models.DifficultyMedium
	}
	return models.DifficultyEasy
}

// KeywordDifficulty leitet die Schwierigkeit einer Frage aus dem Score
// ihres Stützbegriffs ab: häufige Begriffe ergeben leichte Fragen.
// Unabhängig von der Einstufung des Gesamtdokuments.
func KeywordDifficulty(score float64) string {
	switch {
	case score >= keywordScoreEasyMin:
		return models.DifficultyEasy
	case score >= keywordScoreMedMin:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}
