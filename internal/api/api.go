// Package api exposes the services as a JSON HTTP API.
package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/healthcheck"
	"github.com/MyelinBots/heavenly-go/internal/realtime"
	"github.com/MyelinBots/heavenly-go/internal/services/auth"
	"github.com/MyelinBots/heavenly-go/internal/services/chat"
	"github.com/MyelinBots/heavenly-go/internal/services/context_manager"
	"github.com/MyelinBots/heavenly-go/internal/services/couples"
	"github.com/MyelinBots/heavenly-go/internal/services/dashboard"
	"github.com/MyelinBots/heavenly-go/internal/services/library"
	"github.com/MyelinBots/heavenly-go/internal/services/payments"
	"github.com/MyelinBots/heavenly-go/internal/services/scheduling"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

var (
	errBadRequest = errors.New("invalid request body")
	errForbidden  = errors.New("forbidden")
)

// Services are the dependencies the handlers call into.
type Services struct {
	Auth       auth.AuthService
	Scheduling scheduling.SchedulingService
	Couples    couples.CouplesService
	Payments   payments.PaymentsService
	Library    library.LibraryService
	Chat       chat.ChatService
	Dashboard  dashboard.DashboardService
	Hub        *realtime.Hub
	DB         healthcheck.Pinger
}

func NewRouter(cfg config.AppConfig, svc Services) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", gin.WrapF(healthcheck.HealthCheckHandler(svc.DB)))

	api := r.Group("/api")
	RegisterAuthRoutes(api, svc)

	private := api.Group("")
	private.Use(requireUser(svc.Auth))
	RegisterProfileRoutes(private, svc)
	RegisterSessionRoutes(private, svc)
	RegisterCoupleRoutes(private, svc)
	RegisterPaymentRoutes(private, svc)
	RegisterContentRoutes(private, svc)
	RegisterChatRoutes(private, svc)
	RegisterDashboardRoutes(private, svc)
	RegisterAlertRoutes(private, svc)
	return r
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

func requireUser(authService auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := authService.Authenticate(c.Request.Context(), bearerToken(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, u)
		c.Request = c.Request.WithContext(context_manager.SetUserContext(c.Request.Context(), u))
		c.Next()
	}
}

func currentUser(c *gin.Context) *user.User {
	return context_manager.GetUserFromContext(c.Request.Context())
}

func requireRole(c *gin.Context, roles ...user.Role) bool {
	u := currentUser(c)
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	respondError(c, errForbidden)
	return false
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest.Error()})
		return false
	}
	return true
}

// bindOptional accepts an empty body.
func bindOptional(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest.Error()})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

var statusByError = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		errBadRequest,
		auth.ErrInvalidEmail, auth.ErrWeakPassword, auth.ErrPasswordTooLong, auth.ErrInvalidRole, auth.ErrInvalidHours,
		chat.ErrEmptyMessage, chat.ErrInvalidTurn,
		scheduling.ErrInvalidTime, scheduling.ErrInvalidType, scheduling.ErrInvalidStatus,
		scheduling.ErrInvalidDate, scheduling.ErrNoCouple, scheduling.ErrInvalidCost,
		couples.ErrSamePerson, couples.ErrTherapist,
		payments.ErrInvalidAmount, payments.ErrInvalidSplit, payments.ErrInvalidCurrency,
		payments.ErrInvalidStatus, payments.ErrNotCoupleSession,
		library.ErrInvalidProgress, library.ErrInvalidTime, library.ErrMissingTitle, library.ErrUnknownCategory,
		library.ErrInvalidType,
	}},
	{http.StatusUnauthorized, []error{auth.ErrInvalidCredentials, auth.ErrUnauthenticated}},
	{http.StatusForbidden, []error{
		errForbidden, auth.ErrInactive, auth.ErrNotTherapist,
		chat.ErrForbidden, scheduling.ErrForbidden, payments.ErrForbidden, library.ErrForbidden,
	}},
	{http.StatusNotFound, []error{
		auth.ErrNotFound, chat.ErrNotFound, chat.ErrUnknownUser,
		scheduling.ErrNotFound, scheduling.ErrNotTherapist, scheduling.ErrClientNotFound,
		couples.ErrUserNotFound, couples.ErrNotInCouple,
		payments.ErrNotFound, payments.ErrSessionNotFound,
		library.ErrNotFound, dashboard.ErrNoDashboard,
	}},
	{http.StatusConflict, []error{
		auth.ErrEmailTaken, scheduling.ErrOverlap, scheduling.ErrInvalidTransition, scheduling.ErrNotJoinable,
		couples.ErrAlreadyLinked, payments.ErrInvalidTransition,
	}},
}

// StatusFor maps a service error to an HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, group := range statusByError {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
