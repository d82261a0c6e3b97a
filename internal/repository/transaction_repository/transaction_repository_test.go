package transaction_repository

import "testing"

func TestLikePrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"sv8wx", "sv8wx%"},
		{"", "%"},
		{"sv%", `sv\%%`},
		{"s_v", `s\_v%`},
		{`s\v`, `s\\v%`},
	}

	for _, tt := range tests {
		if got := likePrefix(tt.prefix); got != tt.want {
			t.Errorf("likePrefix(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}
