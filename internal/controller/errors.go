package controller

import (
	"errors"
	"net/http"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	var insufficient *quiz.InsufficientQuestionsError
	switch {
	case errors.As(err, &insufficient):
		util.ErrorWithData(ctx, http.StatusUnprocessableEntity, err.Error(), gin.H{
			"subject":    insufficient.Subject,
			"difficulty": insufficient.Difficulty,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
			"retry":      true,
		})
	case errors.Is(err, quiz.ErrInvalidTransition):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrResultNotFound),
		errors.Is(err, util.ErrProfileNotFound),
		errors.Is(err, util.ErrSubscriptionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPremiumRequired):
		util.PaymentRequired(ctx, err.Error())
	case errors.Is(err, util.ErrLoginRequired):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, quiz.ErrInvalidRequest),
		errors.Is(err, quiz.ErrInvalidChoice),
		errors.Is(err, quiz.ErrInvalidQuestion),
		errors.Is(err, quiz.ErrEmptyQuiz),
		errors.Is(err, util.ErrUnknownPlan):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
