package postgres

import "testing"

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "dune", want: "%dune%"},
		{in: "100%", want: `%100\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\books`, want: `%c:\\books%`},
	}

	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Fatalf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
