package utils

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"underscores", "APPLICATION_LIFE_CYCLE", "applicationlifecycle"},
		{"spaces", "Application Life Cycle", "applicationlifecycle"},
		{"hyphens", "application-life-cycle", "applicationlifecycle"},
		{"mixed separators", "Solution_Architect - Senior", "solutionarchitectsenior"},
		{"separator runs removed entirely", "A_B", "ab"},
		{"multiple spaces", "A  B", "ab"},
		{"already joined", "AB", "ab"},
		{"tabs and newlines", "A\tB\nC", "abc"},
		{"empty", "", ""},
		{"only separators", " _- ", ""},
		{"cv id", "Cv_001", "cv001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"APPLICATION_LIFE_CYCLE", "Cv_001", "Data-Protection Officer", ""}
	for _, in := range inputs {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}
