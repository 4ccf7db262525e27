// Package assistant wraps the language model behind deterministic fallbacks.
// Crisis levels always come from the keyword classifier, never from the model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/MyelinBots/heavenly-go/internal/services/crisis"
)

const (
	SentimentPositive  = "positive"
	SentimentNegative  = "negative"
	SentimentNeutral   = "neutral"
	SentimentAnxious   = "anxious"
	SentimentDepressed = "depressed"
)

const (
	historyWindow = 10

	defaultReply  = "I'm here to listen and support you. How are you feeling right now?"
	fallbackReply = "I'm here to listen and support you. Sometimes technology has hiccups, but your feelings and experiences are always valid. How can I help you today?"

	ReasonCritical = "Crisis keywords detected indicating immediate risk"
	ReasonHigh     = "High risk emotional state detected"
	ReasonFallback = "Crisis indicators detected"

	SummaryUnavailable = "Session summary could not be generated due to technical issues."
	summaryEmpty       = "Session summary could not be generated."
)

var (
	anxiousSuggestions = []string{
		"Try deep breathing: inhale for 4 counts, hold for 4, exhale for 6",
		"Consider grounding techniques: name 5 things you can see",
		"Take a short walk or gentle movement",
	}
	depressedSuggestions = []string{
		"Reach out to a trusted friend or family member",
		"Engage in a small, achievable activity",
		"Consider your self-care routine",
	}
	crisisSuggestions = []string{
		"Contact your therapist or crisis hotline immediately",
		"Reach out to a trusted friend or family member",
		"Consider calling emergency services if you're in immediate danger",
	}
	generalSuggestions = []string{
		"Take some time for self-reflection",
		"Practice mindfulness or meditation",
		"Journal about your thoughts and feelings",
	}
	fallbackSuggestions = []string{
		"Take a moment to breathe deeply",
		"Consider reaching out to your support network",
		"Remember that it's okay to ask for help",
	}
)

type SentimentAnalysis struct {
	Sentiment   string       `json:"sentiment"`
	Confidence  float64      `json:"confidence"`
	CrisisLevel crisis.Level `json:"crisis_level"`
	Keywords    []string     `json:"keywords"`
	Emotions    []string     `json:"emotions"`
}

type Response struct {
	Message          string            `json:"message"`
	Sentiment        SentimentAnalysis `json:"sentiment"`
	ShouldEscalate   bool              `json:"should_escalate"`
	EscalationReason string            `json:"escalation_reason,omitempty"`
	Suggestions      []string          `json:"suggestions"`
}

// UserContext personalises the system prompt.
type UserContext struct {
	Name           string
	TherapyGoals   string
	RecentSessions []string
}

type Profile struct {
	TherapyGoals     string
	RecentMoods      []string
	CompletedContent []string
	Preferences      []string
}

type Recommendation struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

var fallbackRecommendation = Recommendation{
	Title:       "Daily Mindfulness Practice",
	Type:        "meditation",
	Description: "A simple 5-minute mindfulness exercise to start your day with clarity and calm.",
	Reason:      "Mindfulness is beneficial for overall mental wellness and emotional regulation.",
}

type Assistant interface {
	AnalyzeSentiment(ctx context.Context, text string) SentimentAnalysis
	Respond(ctx context.Context, message string, history []Turn, uc UserContext) Response
	SummarizeSession(ctx context.Context, notes string, participants []string, sessionType string) string
	Recommend(ctx context.Context, profile Profile) []Recommendation
	Model() string
}

type AssistantImpl struct {
	completer Completer
	model     string
}

// NewAssistant builds an assistant; a nil completer runs it offline.
func NewAssistant(completer Completer, model string) Assistant {
	return &AssistantImpl{completer: completer, model: model}
}

func (a *AssistantImpl) Model() string {
	return a.model
}

func (a *AssistantImpl) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if a.completer == nil {
		return "", ErrOffline
	}
	return a.completer.Complete(ctx, req)
}

func (a *AssistantImpl) AnalyzeSentiment(ctx context.Context, text string) SentimentAnalysis {
	level := crisis.Detect(text)
	fallback := SentimentAnalysis{
		Sentiment:   SentimentNeutral,
		Confidence:  0.5,
		CrisisLevel: level,
		Keywords:    crisis.Match(text).All(),
		Emotions:    []string{},
	}

	raw, err := a.complete(ctx, CompletionRequest{
		Messages: []Turn{
			{Role: RoleSystem, Content: sentimentPrompt},
			{Role: RoleUser, Content: text},
		},
		Temperature: 0.3,
		JSON:        true,
	})
	if err != nil {
		if !errors.Is(err, ErrOffline) {
			log.Printf("[assistant] sentiment analysis failed: %v", err)
		}
		return fallback
	}

	var parsed struct {
		Sentiment  string   `json:"sentiment"`
		Confidence *float64 `json:"confidence"`
		Emotions   []string `json:"emotions"`
		Keywords   []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &parsed); err != nil {
		log.Printf("[assistant] sentiment response not JSON: %v", err)
		return fallback
	}

	result := SentimentAnalysis{
		Sentiment:   normalizeSentiment(parsed.Sentiment),
		Confidence:  0.5,
		CrisisLevel: level,
		Keywords:    parsed.Keywords,
		Emotions:    parsed.Emotions,
	}
	if parsed.Confidence != nil {
		result.Confidence = clamp(*parsed.Confidence, 0, 1)
	}
	if result.Keywords == nil {
		result.Keywords = fallback.Keywords
	}
	if result.Emotions == nil {
		result.Emotions = []string{}
	}
	return result
}

func (a *AssistantImpl) Respond(ctx context.Context, message string, history []Turn, uc UserContext) Response {
	sentiment := a.AnalyzeSentiment(ctx, message)

	shouldEscalate := sentiment.CrisisLevel.ShouldEscalate()
	var reason string
	if shouldEscalate {
		reason = ReasonHigh
		if sentiment.CrisisLevel == crisis.Critical {
			reason = ReasonCritical
		}
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	turns := make([]Turn, 0, len(history)+2)
	turns = append(turns, Turn{Role: RoleSystem, Content: responsePrompt(uc, sentiment, shouldEscalate)})
	turns = append(turns, history...)
	turns = append(turns, Turn{Role: RoleUser, Content: message})

	reply, err := a.complete(ctx, CompletionRequest{
		Messages:    turns,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if errors.Is(err, ErrOffline) {
		// offline replies still escalate on the classifier level
		return Response{
			Message:          fallbackReply,
			Sentiment:        sentiment,
			ShouldEscalate:   shouldEscalate,
			EscalationReason: reason,
			Suggestions:      Suggestions(sentiment),
		}
	}
	if err != nil {
		log.Printf("[assistant] response generation failed: %v", err)
		resp := Response{
			Message:     fallbackReply,
			Sentiment:   sentiment,
			Suggestions: append([]string(nil), fallbackSuggestions...),
		}
		if sentiment.CrisisLevel == crisis.Critical {
			resp.ShouldEscalate = true
			resp.EscalationReason = ReasonFallback
		}
		return resp
	}

	if strings.TrimSpace(reply) == "" {
		reply = defaultReply
	}
	return Response{
		Message:          reply,
		Sentiment:        sentiment,
		ShouldEscalate:   shouldEscalate,
		EscalationReason: reason,
		Suggestions:      Suggestions(sentiment),
	}
}

// Suggestions picks coping suggestions for a sentiment analysis.
func Suggestions(s SentimentAnalysis) []string {
	var picked []string
	switch {
	case s.Sentiment == SentimentAnxious:
		picked = anxiousSuggestions
	case s.Sentiment == SentimentDepressed:
		picked = depressedSuggestions
	case s.CrisisLevel != crisis.None:
		picked = crisisSuggestions
	default:
		picked = generalSuggestions
	}
	return append([]string(nil), picked...)
}

func (a *AssistantImpl) SummarizeSession(ctx context.Context, notes string, participants []string, sessionType string) string {
	summary, err := a.complete(ctx, CompletionRequest{
		Messages: []Turn{
			{Role: RoleSystem, Content: fmt.Sprintf(summaryPrompt, sessionType, strings.Join(participants, ", "))},
			{Role: RoleUser, Content: "Session notes: " + notes},
		},
		Temperature: 0.5,
		MaxTokens:   800,
	})
	if err != nil {
		if !errors.Is(err, ErrOffline) {
			log.Printf("[assistant] session summary failed: %v", err)
		}
		return SummaryUnavailable
	}
	if strings.TrimSpace(summary) == "" {
		return summaryEmpty
	}
	return summary
}

func (a *AssistantImpl) Recommend(ctx context.Context, profile Profile) []Recommendation {
	fallback := []Recommendation{fallbackRecommendation}

	raw, err := a.complete(ctx, CompletionRequest{
		Messages: []Turn{
			{Role: RoleSystem, Content: recommendPrompt},
			{Role: RoleUser, Content: profileDescription(profile)},
		},
		Temperature: 0.7,
		JSON:        true,
	})
	if err != nil {
		if !errors.Is(err, ErrOffline) {
			log.Printf("[assistant] recommendations failed: %v", err)
		}
		return fallback
	}

	var parsed struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &parsed); err != nil {
		log.Printf("[assistant] recommendations response not JSON: %v", err)
		return fallback
	}
	return parsed.Recommendations
}

func normalizeSentiment(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentAnxious, SentimentDepressed:
		return v
	}
	return SentimentNeutral
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stripFence removes a ```json ... ``` wrapper some models put around JSON.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
