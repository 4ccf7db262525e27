package assistant

import (
	"fmt"
	"strings"
)

const sentimentPrompt = `You are a mental health sentiment analysis system. Analyze the emotional content of the message and respond with a JSON object containing:
- sentiment: one of 'positive', 'negative', 'neutral', 'anxious', 'depressed'
- confidence: number between 0-1
- emotions: array of detected emotions
- keywords: array of significant emotional keywords found

Focus on mental health context and be sensitive to crisis indicators.`

const summaryPrompt = `You are an AI assistant helping therapists generate session summaries. Create a professional, concise summary that includes:

1. Key topics discussed
2. Notable insights or breakthroughs
3. Emotional patterns observed
4. Progress toward therapy goals
5. Recommended follow-up actions

Keep the summary confidential, professional, and focused on therapeutic progress.
Session type: %s
Participants: %s`

const recommendPrompt = `You are an AI content curator for a therapy platform. Based on the user's profile, recommend 3-5 pieces of content that would be most helpful for their current state and goals.

Respond with a JSON object containing a "recommendations" array with objects having:
- title: engaging title for the content
- type: "article", "meditation", or "exercise"
- description: brief description of the content
- reason: why this is recommended for this specific user

Focus on evidence-based therapeutic approaches and practical tools.`

const escalationNote = "IMPORTANT: This conversation shows crisis indicators and should be escalated to a human therapist immediately."

func responsePrompt(uc UserContext, s SentimentAnalysis, escalate bool) string {
	var b strings.Builder
	b.WriteString(`You are a compassionate AI therapy assistant for the Mind Heavenly platform. Your role is to provide supportive, empathetic responses while maintaining professional boundaries.

Key guidelines:
- Be warm, empathetic, and non-judgmental
- Ask open-ended questions to encourage reflection
- Provide coping strategies and grounding techniques when appropriate
- Never diagnose or provide medical advice
- Encourage professional help when needed
- If crisis indicators are present, acknowledge their feelings but emphasize professional support
`)
	b.WriteString("\n")
	if uc.Name != "" {
		fmt.Fprintf(&b, "User's name: %s\n", uc.Name)
	}
	if uc.TherapyGoals != "" {
		fmt.Fprintf(&b, "Their therapy goals: %s\n", uc.TherapyGoals)
	}
	if len(uc.RecentSessions) > 0 {
		fmt.Fprintf(&b, "Recent sessions: %s\n", strings.Join(uc.RecentSessions, "; "))
	}
	fmt.Fprintf(&b, "\nCurrent sentiment analysis: %s (%.0f%% confidence)\n", s.Sentiment, s.Confidence*100)
	fmt.Fprintf(&b, "Crisis level: %s\n", s.CrisisLevel)
	fmt.Fprintf(&b, "Detected emotions: %s\n", strings.Join(s.Emotions, ", "))
	if escalate {
		b.WriteString("\n" + escalationNote + "\n")
	}
	b.WriteString("\nRespond with compassion and provide 2-3 helpful suggestions at the end.")
	return b.String()
}

func orDefault(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return strings.Join(list, ", ")
}

func profileDescription(p Profile) string {
	goals := p.TherapyGoals
	if goals == "" {
		goals = "Not specified"
	}
	return fmt.Sprintf("User profile:\nTherapy goals: %s\nRecent moods: %s\nCompleted content: %s\nPreferences: %s",
		goals,
		orDefault(p.RecentMoods, "Not tracked"),
		orDefault(p.CompletedContent, "None"),
		orDefault(p.Preferences, "Not specified"),
	)
}
