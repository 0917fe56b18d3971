package api

import (
	"errors"
	"net/http"

	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errForbidden = errors.New("forbidden")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, product.ErrNoImages),
		errors.Is(err, inventory.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, product.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *order.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	if status >= http.StatusInternalServerError {
		log.Error().Str("component", "api").Str("path", c.FullPath()).Err(err).Msg("request failed")
		if status == http.StatusInternalServerError {
			body["error"] = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
