package voice

import "testing"

func TestCountFillers(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       int
	}{
		{"empty", "", 0},
		{"no fillers", "the backend team replaced the queue listener with workers", 0},
		{"two fillers", "um so I think the answer is clear", 2},
		{"you know phrase", "it was, you know, a difficult migration", 1},
		{"punctuation tolerant", "Right, actually, that's basically correct, literally.", 4},
		{"eight fillers matches scenario 6", "um uh like so actually basically literally right", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countFillers(tt.transcript); got != tt.want {
				t.Errorf("countFillers(%q) = %d, want %d", tt.transcript, got, tt.want)
			}
		})
	}
}
