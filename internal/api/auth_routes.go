package api

import (
	"net/http"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/therapist"
	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/auth"
	"github.com/gin-gonic/gin"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterAuthRoutes(rg *gin.RouterGroup, svc Services) {
	rg.POST("/auth/signup", func(c *gin.Context) { signUp(c, svc.Auth) })
	rg.POST("/auth/signin", func(c *gin.Context) { signIn(c, svc.Auth) })
	rg.POST("/auth/signout", func(c *gin.Context) { signOut(c, svc.Auth) })
	rg.GET("/auth/me", requireUser(svc.Auth), func(c *gin.Context) { c.JSON(http.StatusOK, currentUser(c)) })
}

func RegisterProfileRoutes(rg *gin.RouterGroup, svc Services) {
	rg.PUT("/profile", func(c *gin.Context) { updateProfile(c, svc.Auth) })
	rg.PUT("/therapist/profile", func(c *gin.Context) { upsertTherapistProfile(c, svc.Auth) })
}

func signUp(c *gin.Context, authService auth.AuthService) {
	var in auth.SignUpInput
	if !bind(c, &in) {
		return
	}
	in.IsDemo = false
	u, err := authService.SignUp(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func signIn(c *gin.Context, authService auth.AuthService) {
	var in signInRequest
	if !bind(c, &in) {
		return
	}
	res, err := authService.SignIn(c.Request.Context(), in.Email, in.Password, c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func signOut(c *gin.Context, authService auth.AuthService) {
	if err := authService.SignOut(c.Request.Context(), bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}

func updateProfile(c *gin.Context, authService auth.AuthService) {
	var in auth.ProfileInput
	if !bind(c, &in) {
		return
	}
	u, err := authService.UpdateProfile(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func upsertTherapistProfile(c *gin.Context, authService auth.AuthService) {
	if !requireRole(c, user.RoleTherapist) {
		return
	}
	var p therapist.Profile
	if !bind(c, &p) {
		return
	}
	saved, err := authService.UpsertTherapistProfile(c.Request.Context(), currentUser(c).ID, &p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
