package handler

import (
	"net/http"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/consumption"
	"github.com/farmsync/feedstock-service/internal/consumption/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConsumptionHandler struct {
	uc     consumption.UseCase
	logger *zap.Logger
}

func NewConsumptionHandler(uc consumption.UseCase, logger *zap.Logger) *ConsumptionHandler {
	return &ConsumptionHandler{uc: uc, logger: logger}
}

func (h *ConsumptionHandler) AddItems(c *gin.Context) {
	var input dto.AddItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.uc.AddItems(c.Request.Context(), c.Param("id"), input.Items, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": items})
}

func (h *ConsumptionHandler) UpdateItem(c *gin.Context) {
	var input dto.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.uc.UpdateItem(c.Request.Context(), c.Param("id"), input.Quantity, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ConsumptionHandler) DeleteItem(c *gin.Context) {
	err := h.uc.DeleteItem(c.Request.Context(), c.Param("id"), auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ConsumptionHandler) ListBySession(c *gin.Context) {
	items, err := h.uc.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ConsumptionHandler) respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("consumption request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
}
