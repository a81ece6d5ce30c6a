package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/domain"
)

func parsePage(raw string) (int, error) {
	return strconv.Atoi(raw)
}

// statusForKind maps the error taxonomy onto HTTP statuses for the gateway's
// own surface.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindStock:
		return http.StatusConflict
	case domain.KindCoupon:
		return http.StatusUnprocessableEntity
	case domain.KindPayment:
		return http.StatusPaymentRequired
	case domain.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForKind(domain.ErrKind(err)), gin.H{
		"success": false,
		"message": domain.ErrMessage(err, "request failed"),
	})
}

// respondResult mirrors the admin flows' flattened outcome: the status is
// always 200 and the success flag carries the verdict.
func respondResult(c *gin.Context, res domain.Result, payload gin.H) {
	body := gin.H{"success": res.Success}
	if res.Message != "" {
		body["message"] = res.Message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
