package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendorhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrInvalidCode, http.StatusBadRequest},
		{fmt.Errorf("%w: name too short", model.ErrValidation), http.StatusBadRequest},
		{model.ErrUnauthorized, http.StatusUnauthorized},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrOutOfSequence, http.StatusConflict},
		{model.ErrAlreadyCompleted, http.StatusConflict},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, "error %v", tc.err)
	}
}
