package api

import (
	"errors"
	"net/http"

	"causalgate/domain/core"
	apperrors "causalgate/internal/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func badRequest(c *gin.Context, err error) {
	code := apperrors.CodeInvalidInput
	if apperrors.IsAppError(err) {
		code = apperrors.GetCode(err)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code})
}

// respondError maps domain input errors to 400 and everything else to 500
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNonFiniteInput):
		badRequest(c, apperrors.NonFiniteInput(err))
	case core.IsInputError(err):
		badRequest(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: apperrors.CodeInternalError})
	}
}
