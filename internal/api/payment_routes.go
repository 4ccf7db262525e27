package api

import (
	"net/http"

	"github.com/MyelinBots/heavenly-go/internal/db/repositories/payment"
	"github.com/MyelinBots/heavenly-go/internal/services/payments"
	"github.com/gin-gonic/gin"
)

type paymentStatusRequest struct {
	Status payment.Status `json:"status"`
}

func RegisterPaymentRoutes(rg *gin.RouterGroup, svc Services) {
	p := svc.Payments
	rg.POST("/payments", func(c *gin.Context) { recordPayment(c, p) })
	rg.POST("/payments/split", func(c *gin.Context) { splitPayment(c, p) })
	rg.POST("/payments/:id/status", func(c *gin.Context) { setPaymentStatus(c, p) })
	rg.GET("/payments", func(c *gin.Context) { listPayments(c, p) })
}

func recordPayment(c *gin.Context, p payments.PaymentsService) {
	var in payments.RecordInput
	if !bind(c, &in) {
		return
	}
	created, err := p.Record(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func splitPayment(c *gin.Context, p payments.PaymentsService) {
	var in payments.SplitInput
	if !bind(c, &in) {
		return
	}
	rows, err := p.Split(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rows)
}

func setPaymentStatus(c *gin.Context, p payments.PaymentsService) {
	var in paymentStatusRequest
	if !bind(c, &in) {
		return
	}
	updated, err := p.SetStatus(c.Request.Context(), currentUser(c), c.Param("id"), in.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func listPayments(c *gin.Context, p payments.PaymentsService) {
	list, err := p.ListForPayer(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
