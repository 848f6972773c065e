package handler

import (
	"net/http"
	"time"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/nutrition"
	"github.com/farmsync/feedstock-service/internal/session"
	"github.com/farmsync/feedstock-service/internal/session/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	uc         session.UseCase
	aggregator nutrition.Aggregator
	logger     *zap.Logger
}

func NewSessionHandler(uc session.UseCase, aggregator nutrition.Aggregator, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{uc: uc, aggregator: aggregator, logger: logger}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var input dto.CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.uc.Create(c.Request.Context(), &input, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *SessionHandler) Get(c *gin.Context) {
	s, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SessionHandler) List(c *gin.Context) {
	filters := &session.Filters{CowID: c.Query("cow_id")}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
			return
		}
		filters.Date = &date
	}

	sessions, err := h.uc.List(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sessions})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id"), auth.ActorFrom(c.Request.Context())); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *SessionHandler) Nutrients(c *gin.Context) {
	totals, err := h.aggregator.CachedOrCompute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutrients": totals})
}

func (h *SessionHandler) respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("session request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
}
