package api

import (
	"net/http"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/services/couples"
	"github.com/gin-gonic/gin"
)

func RegisterCoupleRoutes(rg *gin.RouterGroup, svc Services) {
	rg.POST("/couples", func(c *gin.Context) { linkCouple(c, svc.Couples) })
	rg.GET("/couples/me", func(c *gin.Context) { myCouple(c, svc.Couples) })
}

// linkCouple pairs the caller with partner2_id unless an admin names both.
func linkCouple(c *gin.Context, s couples.CouplesService) {
	var in couples.LinkInput
	if !bind(c, &in) {
		return
	}
	if u := currentUser(c); u.Role != user.RoleAdmin {
		in.Partner1ID = u.ID
	}
	couple, err := s.Link(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, couple)
}

func myCouple(c *gin.Context, s couples.CouplesService) {
	view, err := s.ForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
