package handler

import (
	"errors"
	"net/http"

	"vendorhub/internal/model"
	"vendorhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP status codes and renders the standard
// error envelope. Anything unmapped is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidCode):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrOutOfSequence), errors.Is(err, model.ErrAlreadyCompleted):
		status = http.StatusConflict
	}
	c.JSON(status, response.Error(status, err.Error()))
}
