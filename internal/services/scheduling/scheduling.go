// Package scheduling books therapy sessions and drives their lifecycle.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/couple"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/assistant"
	"github.com/MyelinBots/heavenly-go/internal/services/sanitize"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrForbidden         = errors.New("not a participant of this session")
	ErrInvalidTime       = errors.New("session must end after it starts")
	ErrInvalidType       = errors.New("invalid session type")
	ErrInvalidStatus     = errors.New("invalid session status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotTherapist      = errors.New("therapist not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrNoCouple          = errors.New("couple sessions need a linked couple")
	ErrOverlap           = errors.New("therapist already has a session at that time")
	ErrNotJoinable       = errors.New("session cannot be joined right now")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidCost       = errors.New("cost must not be negative")
)

const (
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"

	slotLength = 30 * time.Minute
)

// defaultHours apply to weekdays without configured available hours.
var defaultHours = therapist.DayHours{Start: "09:00", End: "18:00"}

type ScheduleInput struct {
	TherapistID string               `json:"therapist_id"`
	ClientID    string               `json:"client_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Type        therapy_session.Type `json:"type"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	Timezone    string               `json:"timezone"`
	Cost        *int64               `json:"cost"`
}

type ListInput struct {
	Status string
	Scope  string
	Limit  int
}

type JoinInfo struct {
	SessionID   string `json:"session_id"`
	MeetingRoom string `json:"meeting_room"`
	MeetingLink string `json:"meeting_link,omitempty"`
	Duration    int    `json:"duration_minutes"`
	TimeUntil   string `json:"time_until"`
}

type CalendarDay struct {
	Date     string                     `json:"date"`
	Sessions []*therapy_session.Session `json:"sessions"`
}

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type TherapistListing struct {
	*therapist.Profile
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SchedulingService interface {
	Schedule(ctx context.Context, actor *user.User, in ScheduleInput) (*therapy_session.Session, error)
	Get(ctx context.Context, viewer *user.User, id string) (*therapy_session.Session, error)
	List(ctx context.Context, userID string, in ListInput) ([]*therapy_session.Session, error)
	Transition(ctx context.Context, actor *user.User, id string, to therapy_session.Status) (*therapy_session.Session, error)
	Complete(ctx context.Context, actor *user.User, id, notes string) (*therapy_session.Session, error)
	Join(ctx context.Context, viewer *user.User, id string) (*JoinInfo, error)
	Calendar(ctx context.Context, u *user.User, from, to time.Time) ([]CalendarDay, error)
	Availability(ctx context.Context, therapistID, date string) ([]Slot, error)
	AssignTherapist(ctx context.Context, clientID, therapistID string) (*therapist.Assignment, error)
	ListTherapists(ctx context.Context) ([]TherapistListing, error)
}

type SchedulingServiceImpl struct {
	sessions       therapy_session.SessionRepository
	users          user.UserRepository
	couples        couple.CoupleRepository
	therapists     therapist.TherapistRepository
	assistant      assistant.Assistant
	meetingBaseURL string
	now            func() time.Time
}

func NewSchedulingService(
	sessions therapy_session.SessionRepository,
	users user.UserRepository,
	couples couple.CoupleRepository,
	therapists therapist.TherapistRepository,
	ai assistant.Assistant,
	meetingBaseURL string,
) *SchedulingServiceImpl {
	return &SchedulingServiceImpl{
		sessions:       sessions,
		users:          users,
		couples:        couples,
		therapists:     therapists,
		assistant:      ai,
		meetingBaseURL: strings.TrimRight(meetingBaseURL, "/"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *SchedulingServiceImpl) Schedule(ctx context.Context, actor *user.User, in ScheduleInput) (*therapy_session.Session, error) {
	switch actor.Role {
	case user.RoleTherapist:
		in.TherapistID = actor.ID
	case user.RoleAdmin:
	default:
		in.ClientID = actor.ID
	}

	if in.Type == "" {
		in.Type = therapy_session.TypeIndividual
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if start.IsZero() || !end.After(start) {
		return nil, ErrInvalidTime
	}

	doctor, err := s.users.GetUserByID(ctx, in.TherapistID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || doctor.Role != user.RoleTherapist {
		return nil, ErrNotTherapist
	}
	client, err := s.users.GetUserByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	session := &therapy_session.Session{
		TherapistID: doctor.ID,
		ClientID:    client.ID,
		Title:       sanitize.Text(in.Title),
		Description: sanitize.Text(in.Description),
		Type:        in.Type,
		Status:      therapy_session.StatusScheduled,
		StartTime:   start,
		EndTime:     end,
		Timezone:    in.Timezone,
	}
	if session.Title == "" {
		session.Title = defaultTitle(in.Type)
	}
	if session.Timezone == "" {
		session.Timezone = client.Timezone
	}

	if in.Type == therapy_session.TypeCouple {
		c, err := s.couples.GetCoupleForUser(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNoCouple
		}
		partnerID := c.PartnerOf(client.ID)
		session.PartnerID = &partnerID
		session.CoupleID = &c.ID
	}

	overlap, err := s.sessions.HasOverlap(ctx, doctor.ID, start, end, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlap
	}

	if in.Cost != nil {
		if *in.Cost < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidCost, *in.Cost)
		}
		session.Cost = *in.Cost
	} else {
		profile, err := s.therapists.GetProfileByUserID(ctx, doctor.ID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			session.Cost = profile.HourlyRate * int64(Duration(session)) / 60
		}
	}

	session.MeetingRoom = uuid.NewString()
	if s.meetingBaseURL != "" {
		session.MeetingLink = s.meetingBaseURL + "/" + session.MeetingRoom
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func defaultTitle(t therapy_session.Type) string {
	switch t {
	case therapy_session.TypeCouple:
		return "Couples Session"
	case therapy_session.TypeGroup:
		return "Group Session"
	}
	return "Individual Session"
}

func (s *SchedulingServiceImpl) Get(ctx context.Context, viewer *user.User, id string) (*therapy_session.Session, error) {
	session, err := s.sessions.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if viewer.Role != user.RoleAdmin && !session.HasParticipant(viewer.ID) {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *SchedulingServiceImpl) List(ctx context.Context, userID string, in ListInput) ([]*therapy_session.Session, error) {
	filter := therapy_session.ListFilter{Limit: in.Limit}
	now := s.now()

	switch in.Scope {
	case ScopeUpcoming:
		filter.Status = therapy_session.StatusScheduled
		filter.StartsAfter = now
	case ScopePast:
		filter.Status = therapy_session.StatusCompleted
		filter.StartsBefore = now
		filter.Descending = true
	case "":
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidStatus, in.Scope)
	}

	if in.Status != "" && in.Status != "all" {
		status := therapy_session.Status(strings.ToUpper(in.Status))
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		if filter.Status != "" && filter.Status != status {
			return []*therapy_session.Session{}, nil
		}
		filter.Status = status
	}

	return s.sessions.ListForParticipant(ctx, userID, filter)
}

// Transition moves a session to a new status. Any participant may cancel;
// the other moves belong to the therapist.
func (s *SchedulingServiceImpl) Transition(ctx context.Context, actor *user.User, id string, to therapy_session.Status) (*therapy_session.Session, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	session, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if to != therapy_session.StatusCancelled && actor.Role != user.RoleAdmin && actor.ID != session.TherapistID {
		return nil, ErrForbidden
	}
	if !CanTransition(session.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, session.Status, to)
	}
	updated, err := s.sessions.UpdateStatus(ctx, session.ID, session.Status, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: session is no longer %s", ErrInvalidTransition, session.Status)
	}
	session.Status = to
	return session, nil
}

// Complete finishes a running session, storing the therapist's notes and a
// generated summary.
func (s *SchedulingServiceImpl) Complete(ctx context.Context, actor *user.User, id, notes string) (*therapy_session.Session, error) {
	session, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != user.RoleAdmin && actor.ID != session.TherapistID {
		return nil, ErrForbidden
	}
	if !CanTransition(session.Status, therapy_session.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, session.Status, therapy_session.StatusCompleted)
	}

	from := session.Status
	notes = sanitize.Text(notes)
	session.Notes = notes
	session.Status = therapy_session.StatusCompleted
	if notes != "" {
		names, err := s.participantNames(ctx, session)
		if err != nil {
			return nil, err
		}
		session.AISummary = s.assistant.SummarizeSession(ctx, notes, names, string(session.Type))
	}
	updated, err := s.sessions.UpdateIfStatus(ctx, session.ID, from, map[string]interface{}{
		"status":     session.Status,
		"notes":      session.Notes,
		"ai_summary": session.AISummary,
	})
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: session is no longer %s", ErrInvalidTransition, from)
	}
	return session, nil
}

func (s *SchedulingServiceImpl) participantNames(ctx context.Context, session *therapy_session.Session) ([]string, error) {
	ids := []string{session.TherapistID, session.ClientID}
	if session.PartnerID != nil {
		ids = append(ids, *session.PartnerID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			names = append(names, u.DisplayName())
		}
	}
	return names, nil
}

func (s *SchedulingServiceImpl) Join(ctx context.Context, viewer *user.User, id string) (*JoinInfo, error) {
	session, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !CanJoin(session, now) {
		return nil, ErrNotJoinable
	}
	return &JoinInfo{
		SessionID:   session.ID,
		MeetingRoom: session.MeetingRoom,
		MeetingLink: session.MeetingLink,
		Duration:    Duration(session),
		TimeUntil:   TimeUntil(session.StartTime, now),
	}, nil
}

// Calendar groups the user's sessions starting in [from, to) by local day.
func (s *SchedulingServiceImpl) Calendar(ctx context.Context, u *user.User, from, to time.Time) ([]CalendarDay, error) {
	if !to.After(from) {
		return nil, ErrInvalidDate
	}
	sessions, err := s.sessions.ListForParticipant(ctx, u.ID, therapy_session.ListFilter{
		StartsAfter:  from.UTC().Add(-time.Nanosecond),
		StartsBefore: to.UTC(),
	})
	if err != nil {
		return nil, err
	}

	loc := location(u.Timezone)
	days := map[string]*CalendarDay{}
	for _, sess := range sessions {
		key := sess.StartTime.In(loc).Format("2006-01-02")
		day, ok := days[key]
		if !ok {
			day = &CalendarDay{Date: key}
			days[key] = day
		}
		day.Sessions = append(day.Sessions, sess)
	}

	out := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Availability lists the free 30 minute slots for a therapist on a date
// (YYYY-MM-DD in the therapist's timezone).
func (s *SchedulingServiceImpl) Availability(ctx context.Context, therapistID, date string) ([]Slot, error) {
	doctor, err := s.users.GetUserByID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || doctor.Role != user.RoleTherapist {
		return nil, ErrNotTherapist
	}
	loc := location(doctor.Timezone)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	hours := defaultHours
	profile, err := s.therapists.GetProfileByUserID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if h, ok := profile.AvailableHours[strings.ToLower(day.Weekday().String())]; ok {
			if h.Closed {
				return []Slot{}, nil
			}
			hours = h
		}
	}

	open, err := clock(day, hours.Start)
	if err != nil {
		return nil, err
	}
	closing, err := clock(day, hours.End)
	if err != nil {
		return nil, err
	}

	booked, err := s.sessions.ListForTherapistBetween(ctx, therapistID, day.Add(-24*time.Hour).UTC(), day.Add(48*time.Hour).UTC())
	if err != nil {
		return nil, err
	}

	now := s.now()
	slots := []Slot{}
	for start := open; !start.Add(slotLength).After(closing); start = start.Add(slotLength) {
		end := start.Add(slotLength)
		if start.Before(now) || overlapsAny(booked, start, end) {
			continue
		}
		slots = append(slots, Slot{Start: start.UTC(), End: end.UTC()})
	}
	return slots, nil
}

func overlapsAny(sessions []*therapy_session.Session, start, end time.Time) bool {
	for _, b := range sessions {
		if b.Status == therapy_session.StatusNoShow {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true
		}
	}
	return false
}

func clock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad hours %q", ErrInvalidDate, hhmm)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *SchedulingServiceImpl) AssignTherapist(ctx context.Context, clientID, therapistID string) (*therapist.Assignment, error) {
	doctor, err := s.users.GetUserByID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || doctor.Role != user.RoleTherapist {
		return nil, ErrNotTherapist
	}
	client, err := s.users.GetUserByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.Role == user.RoleTherapist {
		return nil, ErrClientNotFound
	}
	return s.therapists.Assign(ctx, clientID, therapistID)
}

func (s *SchedulingServiceImpl) ListTherapists(ctx context.Context) ([]TherapistListing, error) {
	profiles, err := s.therapists.ListAccepting(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]TherapistListing, 0, len(profiles))
	for _, p := range profiles {
		u, ok := byID[p.UserID]
		if !ok || !u.IsActive {
			continue
		}
		out = append(out, TherapistListing{Profile: p, Name: u.DisplayName(), Email: u.Email})
	}
	return out, nil
}
