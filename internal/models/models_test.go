package models

import (
	"math"
	"testing"
	"time"
)

func TestUpdateStats(t *testing.T) {
	quiz := &Quiz{ID: "quiz-1"}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	attempt := func(score int, minutes float64) Attempt {
		return Attempt{
			QuizID:    quiz.ID,
			StartTime: base,
			EndTime:   base.Add(time.Duration(minutes * float64(time.Minute))),
			Score:     score,
		}
	}

	quiz.UpdateStats(attempt(3, 4))
	if quiz.Stats.TotalAttempts != 1 || quiz.Stats.BestScore != 3 {
		t.Fatalf("Stats nach erstem Versuch = %+v", quiz.Stats)
	}
	if quiz.Stats.AverageScore != 3 || quiz.Stats.AverageTime != 4 {
		t.Errorf("Durchschnitte = %f / %f, want 3 / 4", quiz.Stats.AverageScore, quiz.Stats.AverageTime)
	}

	quiz.UpdateStats(attempt(5, 2))
	if quiz.Stats.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2", quiz.Stats.TotalAttempts)
	}
	if quiz.Stats.BestScore != 5 {
		t.Errorf("BestScore = %d, want 5", quiz.Stats.BestScore)
	}
	if math.Abs(quiz.Stats.AverageScore-4) > 1e-9 {
		t.Errorf("AverageScore = %f, want 4", quiz.Stats.AverageScore)
	}
	if math.Abs(quiz.Stats.AverageTime-3) > 1e-9 {
		t.Errorf("AverageTime = %f, want 3", quiz.Stats.AverageTime)
	}

	// Schlechterer Versuch senkt den Bestwert nicht
	quiz.UpdateStats(attempt(1, 3))
	if quiz.Stats.BestScore != 5 {
		t.Errorf("BestScore = %d, want weiterhin 5", quiz.Stats.BestScore)
	}
}
