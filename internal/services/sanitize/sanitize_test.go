package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "I feel okay today", "I feel okay today"},
		{"apostrophe survives", "I'm not sure", "I'm not sure"},
		{"tags stripped", "<b>hello</b> there", "hello there"},
		{"script removed", "hi<script>alert(1)</script>", "hi"},
		{"comparison kept", "a < b", "a < b"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRich(t *testing.T) {
	got := Rich(`<p onclick="x()">Breathe <a href="https://example.com">here</a></p><script>bad()</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Errorf("Rich left unsafe markup: %q", got)
	}
	if !strings.Contains(got, "<p>") || !strings.Contains(got, `rel="nofollow`) {
		t.Errorf("Rich dropped safe markup: %q", got)
	}
}
