package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
)

// JoinLead is how early before the start a session can be joined.
const JoinLead = 15 * time.Minute

var transitions = map[therapy_session.Status][]therapy_session.Status{
	therapy_session.StatusScheduled: {
		therapy_session.StatusInProgress,
		therapy_session.StatusCancelled,
		therapy_session.StatusNoShow,
	},
	therapy_session.StatusInProgress: {
		therapy_session.StatusCompleted,
		therapy_session.StatusCancelled,
	},
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to therapy_session.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanJoin is true from JoinLead before the start until the end, while the
// session is scheduled or running.
func CanJoin(s *therapy_session.Session, now time.Time) bool {
	if s.Status != therapy_session.StatusScheduled && s.Status != therapy_session.StatusInProgress {
		return false
	}
	opens := s.StartTime.Add(-JoinLead)
	return !now.Before(opens) && !now.After(s.EndTime)
}

// Duration is the session length in whole minutes, rounded.
func Duration(s *therapy_session.Session) int {
	return int(math.Round(s.EndTime.Sub(s.StartTime).Minutes()))
}

// TimeUntil renders the wait before start as "2d 3h", "3h 5m" or "12m".
func TimeUntil(start, now time.Time) string {
	diff := start.Sub(now)
	if diff < 0 {
		return "Session has started"
	}
	days := int(diff / (24 * time.Hour))
	hours := int(diff % (24 * time.Hour) / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
