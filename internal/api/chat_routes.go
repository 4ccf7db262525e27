package api

import (
	"net/http"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/user"
	"github.com/MyelinBots/heavenly-go/internal/realtime"
	"github.com/MyelinBots/heavenly-go/internal/services/assistant"
	"github.com/MyelinBots/heavenly-go/internal/services/chat"
	"github.com/MyelinBots/heavenly-go/internal/services/dashboard"
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message             string           `json:"message"`
	ConversationHistory []assistant.Turn `json:"conversation_history"`
}

func RegisterChatRoutes(rg *gin.RouterGroup, svc Services) {
	rg.POST("/ai/chat", func(c *gin.Context) { sendChat(c, svc.Chat) })
	rg.GET("/ai/chat", func(c *gin.Context) { listConversations(c, svc.Chat) })
	rg.GET("/ai/conversations/:id/messages", func(c *gin.Context) { listMessages(c, svc.Chat) })
}

func RegisterDashboardRoutes(rg *gin.RouterGroup, svc Services) {
	rg.GET("/dashboard", func(c *gin.Context) { showDashboard(c, svc.Dashboard) })
}

func RegisterAlertRoutes(rg *gin.RouterGroup, svc Services) {
	rg.GET("/alerts/ws", func(c *gin.Context) {
		if !requireRole(c, user.RoleTherapist) {
			return
		}
		realtime.ServeWs(svc.Hub, c.Writer, c.Request, realtime.TherapistTopic(currentUser(c).ID))
	})
}

func sendChat(c *gin.Context, s chat.ChatService) {
	var in chatRequest
	if !bind(c, &in) {
		return
	}
	reply, err := s.Send(c.Request.Context(), currentUser(c).ID, in.Message, in.ConversationHistory)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func listConversations(c *gin.Context, s chat.ChatService) {
	list, err := s.Conversations(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

func listMessages(c *gin.Context, s chat.ChatService) {
	msgs, err := s.Messages(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func showDashboard(c *gin.Context, s dashboard.DashboardService) {
	d, err := s.ForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
