package handler

import (
	"net/http"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/stock"
	"github.com/farmsync/feedstock-service/internal/stock/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StockHandler struct {
	uc     stock.UseCase
	logger *zap.Logger
}

func NewStockHandler(uc stock.UseCase, logger *zap.Logger) *StockHandler {
	return &StockHandler{uc: uc, logger: logger}
}

func (h *StockHandler) Restock(c *gin.Context) {
	actor := auth.ActorFrom(c.Request.Context())
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins may restock"})
		return
	}

	var input dto.RestockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.Restock(c.Request.Context(), c.Param("feedID"), input.Delta, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StockHandler) SetStock(c *gin.Context) {
	actor := auth.ActorFrom(c.Request.Context())
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins may set stock"})
		return
	}

	var input dto.SetStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.SetStock(c.Request.Context(), c.Param("feedID"), *input.Quantity, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StockHandler) Get(c *gin.Context) {
	s, err := h.uc.GetByFeed(c.Request.Context(), c.Param("feedID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StockHandler) List(c *gin.Context) {
	stocks, err := h.uc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stocks})
}

func (h *StockHandler) History(c *gin.Context) {
	var feedID *string
	if v := c.Query("feed_id"); v != "" {
		feedID = &v
	}

	entries, err := h.uc.History(c.Request.Context(), feedID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *StockHandler) respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("stock request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
}
