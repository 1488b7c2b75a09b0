package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWallet(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeWallet("  0xAbCdEf "))
	assert.Equal(t, "", NormalizeWallet("   "))
}

func TestIsQuizOption(t *testing.T) {
	for _, opt := range []string{"A", "B", "C", "D"} {
		assert.True(t, IsQuizOption(opt))
	}
	for _, opt := range []string{"", "a", "E", "AB"} {
		assert.False(t, IsQuizOption(opt))
	}
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid input", fmt.Errorf("%w: title is required", ErrInvalidInput), http.StatusBadRequest, "invalid input: title is required"},
		{"article missing", ErrArticleNotFound, http.StatusNotFound, "Article not found"},
		{"quiz missing", ErrQuizNotFound, http.StatusNotFound, "Quiz not found"},
		{"quiz unavailable", ErrQuizUnavailable, http.StatusNotFound, "Quiz questions unavailable"},
		{"briefing missing", ErrBriefingNotFound, http.StatusNotFound, "Resource not found"},
		{"generation", fmt.Errorf("%w: timeout", ErrGenerationFailed), http.StatusBadGateway, ErrGenerationFailed.Error()},
		{"storage", fmt.Errorf("%w: connection reset", ErrStorageUnavailable), http.StatusServiceUnavailable, "Database unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleServiceError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}
