package api

import (
	"net/http"
	"time"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapy_session"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/scheduling"
	"github.com/gin-gonic/gin"
)

const defaultCalendarSpan = 30 * 24 * time.Hour

type assignRequest struct {
	ClientID    string `json:"client_id"`
	TherapistID string `json:"therapist_id"`
}

type statusRequest struct {
	Status therapy_session.Status `json:"status"`
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func RegisterSessionRoutes(rg *gin.RouterGroup, svc Services) {
	s := svc.Scheduling
	rg.GET("/therapists", func(c *gin.Context) { listTherapists(c, s) })
	rg.GET("/therapists/:id/availability", func(c *gin.Context) { availability(c, s) })
	rg.POST("/assignments", func(c *gin.Context) { assign(c, s) })

	rg.POST("/sessions", func(c *gin.Context) { scheduleSession(c, s) })
	rg.GET("/sessions", func(c *gin.Context) { listSessions(c, s) })
	rg.GET("/sessions/:id", func(c *gin.Context) { getSession(c, s) })
	rg.POST("/sessions/:id/status", func(c *gin.Context) { transitionSession(c, s) })
	rg.POST("/sessions/:id/complete", func(c *gin.Context) { completeSession(c, s) })
	rg.GET("/sessions/:id/join", func(c *gin.Context) { joinSession(c, s) })
	rg.GET("/calendar", func(c *gin.Context) { calendar(c, s) })
}

func listTherapists(c *gin.Context, s scheduling.SchedulingService) {
	list, err := s.ListTherapists(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func availability(c *gin.Context, s scheduling.SchedulingService) {
	slots, err := s.Availability(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// assign lets clients pick a therapist and therapists take on a client;
// admins may pair anyone.
func assign(c *gin.Context, s scheduling.SchedulingService) {
	var in assignRequest
	if !bind(c, &in) {
		return
	}
	u := currentUser(c)
	switch u.Role {
	case user.RoleAdmin:
	case user.RoleTherapist:
		in.TherapistID = u.ID
	default:
		in.ClientID = u.ID
	}
	a, err := s.AssignTherapist(c.Request.Context(), in.ClientID, in.TherapistID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func scheduleSession(c *gin.Context, s scheduling.SchedulingService) {
	var in scheduling.ScheduleInput
	if !bind(c, &in) {
		return
	}
	session, err := s.Schedule(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func listSessions(c *gin.Context, s scheduling.SchedulingService) {
	sessions, err := s.List(c.Request.Context(), currentUser(c).ID, scheduling.ListInput{
		Status: c.Query("status"),
		Scope:  c.Query("scope"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func getSession(c *gin.Context, s scheduling.SchedulingService) {
	session, err := s.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func transitionSession(c *gin.Context, s scheduling.SchedulingService) {
	var in statusRequest
	if !bind(c, &in) {
		return
	}
	session, err := s.Transition(c.Request.Context(), currentUser(c), c.Param("id"), in.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func completeSession(c *gin.Context, s scheduling.SchedulingService) {
	var in completeRequest
	if !bindOptional(c, &in) {
		return
	}
	session, err := s.Complete(c.Request.Context(), currentUser(c), c.Param("id"), in.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func joinSession(c *gin.Context, s scheduling.SchedulingService) {
	info, err := s.Join(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, scheduling.ErrInvalidDate
	}
	return t, nil
}

func calendar(c *gin.Context, s scheduling.SchedulingService) {
	now := time.Now().UTC()
	from, err := parseTime(c.Query("from"), now)
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseTime(c.Query("to"), from.Add(defaultCalendarSpan))
	if err != nil {
		respondError(c, err)
		return
	}
	days, err := s.Calendar(c.Request.Context(), currentUser(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}
