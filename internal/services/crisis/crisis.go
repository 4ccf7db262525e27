// Package crisis classifies free-text chat messages into coarse risk tiers.
package crisis

import (
	"fmt"
	"strings"
)

type Level string

const (
	None     Level = "NONE"
	Low      Level = "LOW"
	Medium   Level = "MEDIUM"
	High     Level = "HIGH"
	Critical Level = "CRITICAL"
)

// Any match triggers immediate escalation.
var criticalKeywords = []string{
	"suicide", "kill myself", "end it all", "not worth living", "hurt myself",
	"self harm", "cutting", "overdose", "jump off", "hanging", "pills",
	"want to die", "better off dead", "no point", "give up", "can't go on",
}

var highRiskKeywords = []string{
	"hopeless", "worthless", "trapped", "burden", "pain too much",
	"can't take it", "desperate", "exhausted", "empty", "numb",
}

var mediumRiskKeywords = []string{
	"depressed", "anxious", "overwhelmed", "stressed", "worried",
	"scared", "angry", "frustrated", "confused", "lost",
}

// Detect returns the crisis level of text. Critical keywords short-circuit;
// otherwise high-risk hits are counted first, then medium-risk hits.
func Detect(text string) Level {
	lower := strings.ToLower(text)

	for _, keyword := range criticalKeywords {
		if strings.Contains(lower, keyword) {
			return Critical
		}
	}

	highRisk := countMatches(lower, highRiskKeywords)
	if highRisk >= 2 {
		return High
	} else if highRisk >= 1 {
		return Medium
	}

	mediumRisk := countMatches(lower, mediumRiskKeywords)
	if mediumRisk >= 3 {
		return Medium
	} else if mediumRisk >= 1 {
		return Low
	}

	return None
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			n++
		}
	}
	return n
}

// Matches lists the keywords found in a message, per tier.
type Matches struct {
	Critical []string `json:"critical,omitempty"`
	High     []string `json:"high,omitempty"`
	Medium   []string `json:"medium,omitempty"`
}

func Match(text string) Matches {
	lower := strings.ToLower(text)
	return Matches{
		Critical: matching(lower, criticalKeywords),
		High:     matching(lower, highRiskKeywords),
		Medium:   matching(lower, mediumRiskKeywords),
	}
}

func matching(lower string, keywords []string) []string {
	var out []string
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			out = append(out, keyword)
		}
	}
	return out
}

// All returns every matched keyword, most severe tier first.
func (m Matches) All() []string {
	out := make([]string, 0, len(m.Critical)+len(m.High)+len(m.Medium))
	out = append(out, m.Critical...)
	out = append(out, m.High...)
	return append(out, m.Medium...)
}

// ShouldEscalate is true for the tiers that need a human therapist.
func (l Level) ShouldEscalate() bool {
	return l == High || l == Critical
}

// Rank orders levels from NONE (0) to CRITICAL (4); unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case None:
		return 0
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	case Critical:
		return 4
	}
	return -1
}

func (l Level) Valid() bool {
	return l.Rank() >= 0
}

func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown crisis level %q", s)
	}
	return l, nil
}
