package handler

import (
	"net/http"

	"github.com/farmsync/feedstock-service/internal/apperr"
	"github.com/farmsync/feedstock-service/internal/auth"
	"github.com/farmsync/feedstock-service/internal/feed"
	"github.com/farmsync/feedstock-service/internal/feed/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedHandler struct {
	uc     feed.UseCase
	logger *zap.Logger
}

func NewFeedHandler(uc feed.UseCase, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{uc: uc, logger: logger}
}

func (h *FeedHandler) Create(c *gin.Context) {
	var input dto.CreateFeedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.uc.CreateFeed(c.Request.Context(), &input, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FeedHandler) Update(c *gin.Context) {
	var input dto.UpdateFeedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.uc.UpdateFeed(c.Request.Context(), c.Param("id"), &input, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FeedHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteFeed(c.Request.Context(), c.Param("id"), auth.ActorFrom(c.Request.Context())); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *FeedHandler) Get(c *gin.Context) {
	f, err := h.uc.GetFeed(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FeedHandler) List(c *gin.Context) {
	feeds, err := h.uc.ListFeeds(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": feeds})
}

func (h *FeedHandler) CreateNutrient(c *gin.Context) {
	var input dto.CreateNutrientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.uc.CreateNutrient(c.Request.Context(), &input, auth.ActorFrom(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *FeedHandler) ListNutrients(c *gin.Context) {
	nutrients, err := h.uc.ListNutrients(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nutrients})
}

func (h *FeedHandler) SetComposition(c *gin.Context) {
	var input dto.SetCompositionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.uc.SetComposition(c.Request.Context(), c.Param("id"), &input, auth.ActorFrom(c.Request.Context())); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *FeedHandler) respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error("feed request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.MessageOf(err)})
}
