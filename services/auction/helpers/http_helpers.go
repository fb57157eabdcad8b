package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/identity"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

// IdentityContextKey is where AuthRequiredMiddleware stores the caller identity
const IdentityContextKey = "identity"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrParticipantNotFound):
		return http.StatusNotFound, "participant not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrEmailTaken):
		return http.StatusBadRequest, "email already exists"
	case errors.Is(err, auctionerrors.ErrEmailNotVerified):
		return http.StatusBadRequest, "email not verified, a verification email has been resent"
	case errors.Is(err, auctionerrors.ErrInvalidToken):
		return http.StatusBadRequest, "invalid or expired verification token"
	case errors.Is(err, auctionerrors.ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusGone, "auction has ended"
	case errors.Is(err, auctionerrors.ErrInconsistentState):
		return http.StatusInternalServerError, "auction state is inconsistent"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// IdentityFromContext returns the authenticated identity stored by the auth middleware
func IdentityFromContext(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(IdentityContextKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
