package crisis

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Level
	}{
		{"empty", "", None},
		{"no keywords", "Had a lovely walk in the park today", None},
		{"critical", "I want to die", Critical},
		{"critical uppercase", "SOMETIMES I THINK ABOUT SUICIDE", Critical},
		{"critical apostrophe", "I can't go on like this", Critical},
		{"critical beats others", "hopeless worthless anxious stressed but I will not hurt myself", Critical},
		{"two high", "I feel hopeless and worthless", High},
		{"one high", "I'm so exhausted lately", Medium},
		{"three medium", "I'm anxious, stressed and worried", Medium},
		{"two medium", "I'm anxious and stressed", Low},
		{"one medium", "a bit confused about work", Low},
		{"high counted before medium", "I feel numb, anxious, stressed and worried", Medium},
		{"substring match", "my dog got lost", Low},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetect_AnyCriticalKeywordIsCritical(t *testing.T) {
	for _, keyword := range criticalKeywords {
		text := "Everything is fine and I feel hopeless and worthless " + strings.ToUpper(keyword)
		if got := Detect(text); got != Critical {
			t.Errorf("Detect with %q = %s, want CRITICAL", keyword, got)
		}
	}
}

func TestDetect_ZeroMatchesIsNone(t *testing.T) {
	for _, text := range []string{"hello", "the weather is nice", "I finished my project", "12345"} {
		if got := Detect(text); got != None {
			t.Errorf("Detect(%q) = %s, want NONE", text, got)
		}
	}
}

func TestMatch(t *testing.T) {
	m := Match("I feel Hopeless, numb and anxious. I want to die.")

	want := Matches{
		Critical: []string{"want to die"},
		High:     []string{"hopeless", "numb"},
		Medium:   []string{"anxious"},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"want to die", "hopeless", "numb", "anxious"}, m.All()); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
}

func TestLevelHelpers(t *testing.T) {
	tests := []struct {
		level    Level
		rank     int
		escalate bool
	}{
		{None, 0, false},
		{Low, 1, false},
		{Medium, 2, false},
		{High, 3, true},
		{Critical, 4, true},
		{Level("BOGUS"), -1, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
			if got := tt.level.ShouldEscalate(); got != tt.escalate {
				t.Errorf("ShouldEscalate() = %v, want %v", got, tt.escalate)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	got, err := ParseLevel(" high ")
	if err != nil || got != High {
		t.Errorf("ParseLevel(high) = %s, %v", got, err)
	}
	if _, err := ParseLevel("severe"); err == nil {
		t.Error("expected error for unknown level")
	}
}
