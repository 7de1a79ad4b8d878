package domain

import "testing"

func TestDerivePuzzleStatus(t *testing.T) {
	tests := []struct {
		name         string
		queueEnabled bool
		statuses     []GuessStatus
		want         PuzzleStatus
	}{
		{"no guesses", false, nil, StatusSolving},
		{"no guesses with queue", true, nil, StatusSolving},
		{"correct guess", false, []GuessStatus{GuessCorrect}, StatusSolved},
		{"correct wins over open", true, []GuessStatus{GuessNew, GuessCorrect}, StatusSolved},
		{"correct wins regardless of order", true, []GuessStatus{GuessCorrect, GuessNew}, StatusSolved},
		{"open guess with queue", true, []GuessStatus{GuessNew}, StatusPending},
		{"submitted guess with queue", true, []GuessStatus{GuessSubmitted}, StatusPending},
		{"open guess without queue", false, []GuessStatus{GuessNew}, StatusSolving},
		{"incorrect only", true, []GuessStatus{GuessIncorrect}, StatusSolving},
		{"partial only", true, []GuessStatus{GuessPartial}, StatusSolving},
		{"incorrect and open with queue", true, []GuessStatus{GuessIncorrect, GuessNew}, StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guesses := make([]*Guess, len(tt.statuses))
			for i, s := range tt.statuses {
				guesses[i] = &Guess{Status: s}
			}
			if got := DerivePuzzleStatus(tt.queueEnabled, guesses); got != tt.want {
				t.Errorf("DerivePuzzleStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrectAnswers(t *testing.T) {
	guesses := []*Guess{
		{Text: "ANS1", Status: GuessCorrect},
		{Text: "NOPE", Status: GuessIncorrect},
		{Text: "ANS2", Status: GuessCorrect},
	}

	answers := CorrectAnswers(guesses)
	if len(answers) != 2 || answers[0] != "ANS1" || answers[1] != "ANS2" {
		t.Errorf("CorrectAnswers() = %v, want [ANS1 ANS2]", answers)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("Tollbooth", nil); got != "Tollbooth" {
		t.Errorf("unsolved title = %q", got)
	}
	if got := DisplayTitle("Tollbooth", []string{"MILO", "TOCK"}); got != "[SOLVED: MILO, TOCK] Tollbooth" {
		t.Errorf("solved title = %q", got)
	}
}
