package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/barterfeed/backend/internal/domain"
	"github.com/barterfeed/backend/internal/logger"
)

const (
	serviceName = "barterfeed-backend"
	version     = "1.0.0"
)

// FeedUsecase is the feed behaviour the HTTP layer depends on
type FeedUsecase interface {
	BuildFeed(ctx context.Context, userID string) (*domain.Feed, error)
	Evaluate(user *domain.UserProfile, offer *domain.BarterOffer, taxonomy *domain.SystemTaxonomy) domain.RelevanceDecision
	ResolveTags(ctx context.Context, tags []string, taxonomy *domain.SystemTaxonomy) ([]string, []string, error)
	Taxonomy(ctx context.Context) (*domain.SystemTaxonomy, error)
	UpdateTaxonomy(ctx context.Context, taxonomy *domain.SystemTaxonomy) error
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	Offer(ctx context.Context, id string) (*domain.BarterOffer, error)
	SaveOffer(ctx context.Context, offer *domain.BarterOffer) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	feeds  FeedUsecase
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(feeds FeedUsecase, log *zap.Logger) *Handler {
	return &Handler{feeds: feeds, logger: logger.OrNop(log)}
}

// EvaluateRequest is the body of POST /api/v1/relevance/evaluate
type EvaluateRequest struct {
	User     *domain.UserProfile    `json:"user" binding:"required"`
	Offer    *domain.BarterOffer    `json:"offer" binding:"required"`
	Taxonomy *domain.SystemTaxonomy `json:"taxonomy"`
}

// ResolveTagsRequest is the body of POST /api/v1/tags/resolve
type ResolveTagsRequest struct {
	Tags     []string               `json:"tags"`
	Taxonomy *domain.SystemTaxonomy `json:"taxonomy"`
}

// ResolveTagsResponse lists resolved categories and interests in sorted order
type ResolveTagsResponse struct {
	Categories []string `json:"categories"`
	Interests  []string `json:"interests"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": version,
	})
}

// GetFeed returns the personalized feed for a user
func (h *Handler) GetFeed(c *gin.Context) {
	feed, err := h.feeds.BuildFeed(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// EvaluateRelevance decides relevance for a user/offer/taxonomy triple supplied in the body
func (h *Handler) EvaluateRelevance(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.feeds.Evaluate(req.User, req.Offer, req.Taxonomy))
}

// ResolveTags resolves tags against the supplied or stored taxonomy
func (h *Handler) ResolveTags(c *gin.Context) {
	var req ResolveTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories, interests, err := h.feeds.ResolveTags(c.Request.Context(), req.Tags, req.Taxonomy)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveTagsResponse{Categories: categories, Interests: interests})
}

// GetTaxonomy returns the current taxonomy
func (h *Handler) GetTaxonomy(c *gin.Context) {
	taxonomy, err := h.feeds.Taxonomy(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taxonomy)
}

// PutTaxonomy replaces the taxonomy
func (h *Handler) PutTaxonomy(c *gin.Context) {
	var taxonomy domain.SystemTaxonomy
	if err := c.ShouldBindJSON(&taxonomy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feeds.UpdateTaxonomy(c.Request.Context(), &taxonomy); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taxonomy)
}

// PutProfile stores the profile under the path ID
func (h *Handler) PutProfile(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile.ID = c.Param("id")

	if err := h.feeds.SaveProfile(c.Request.Context(), &profile); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PutOffer stores the offer under the path ID
// GetOffer returns one offer by ID
func (h *Handler) GetOffer(c *gin.Context) {
	offer, err := h.feeds.Offer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *Handler) PutOffer(c *gin.Context) {
	var offer domain.BarterOffer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer.ID = c.Param("id")

	if err := h.feeds.SaveOffer(c.Request.Context(), &offer); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// respondError maps domain errors to HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrOfferNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
