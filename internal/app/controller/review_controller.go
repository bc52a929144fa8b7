package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/service"
	apperrors "github.com/venuebook/venuebook-backend/internal/errors"
	"github.com/venuebook/venuebook-backend/internal/middleware"
)

type ReviewController struct {
	reviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type ReplyRequest struct {
	Message string `json:"message" binding:"required"`
}

// CreateReview handles POST /venues/:id/reviews.
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	venueID, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data: "+err.Error())
		return
	}

	review, err := ctrl.reviewService.CreateReview(c.Request.Context(), userID, venueID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrVenueNotFound):
			apperrors.NotFound(c, apperrors.VenueNotFound, "Venue not found")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"venue_id": venueID,
				"user_id":  userID,
			})
			apperrors.InternalError(c, "Failed to create review")
		}
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
		"venue_id":  venueID,
		"rating":    review.Rating,
	})

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// ListVenueReviews handles GET /venues/:id/reviews with pagination.
func (ctrl *ReviewController) ListVenueReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	venueID, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reviews, total, err := ctrl.reviewService.GetVenueReviews(c.Request.Context(), venueID, page, limit)
	if err != nil {
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"venue_id": venueID,
		})
		apperrors.InternalError(c, "Failed to fetch reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"total_count": total,
		"page":        page,
		"limit":       limit,
	})
}

// ReplyToReview handles POST /vendor/reviews/:id/reply. Venue owners reply to
// reviews on their own venues; admins may reply anywhere.
func (ctrl *ReviewController) ReplyToReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ReviewEmptyReply, "Reply message is required")
		return
	}

	role, _ := middleware.GetUserRole(c)
	isAdmin := role == model.RoleAdmin

	review, err := ctrl.reviewService.ReplyToReview(c.Request.Context(), userID, isAdmin, reviewID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
		case errors.Is(err, service.ErrReviewAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "Only the venue owner may reply to this review")
		case errors.Is(err, service.ErrEmptyReply):
			apperrors.BadRequest(c, apperrors.ReviewEmptyReply, "Reply message must not be empty")
		default:
			log.Error("Failed to reply to review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.InternalError(c, "Failed to reply to review")
		}
		return
	}

	log.Info("Review reply posted", map[string]interface{}{
		"review_id": review.ID,
		"user_id":   userID,
	})

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// DeleteReview handles DELETE /reviews/:id. Authors delete their own reviews;
// admins may delete any review.
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	role, _ := middleware.GetUserRole(c)
	isAdmin := role == model.RoleAdmin

	if err := ctrl.reviewService.DeleteReview(c.Request.Context(), reviewID, userID, isAdmin); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
		case errors.Is(err, service.ErrReviewAccessDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzAccessDenied, "You may only delete your own reviews")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"review_id": reviewID,
			})
			apperrors.InternalError(c, "Failed to delete review")
		}
		return
	}

	log.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
