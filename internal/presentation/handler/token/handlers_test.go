package token_test

import (
	"bytes"
	gojson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdoodle/pairing/internal/infrastructure/auth"
	"github.com/pdoodle/pairing/internal/presentation/handler/token"
)

func issueRequest(t *testing.T, h *token.Handler, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := gojson.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.IssueTokenHandler(rec, req)
	return rec
}

func TestIssueTokenHandler(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", "pairing-api")
	h := token.NewHandler(verifier, time.Hour)

	rec := issueRequest(t, h, map[string]string{"name": "ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token   string `json:"token"`
		Subject string `json:"subject"`
	}
	require.NoError(t, gojson.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.Subject)

	// The issued token verifies against the same secret and carries
	// the synthetic identity.
	identity, err := verifier.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Subject, identity.Subject)
	assert.Equal(t, "ada", identity.Name)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestIssueTokenHandler_Validation(t *testing.T) {
	h := token.NewHandler(auth.NewVerifier("test-secret", "pairing-api"), time.Hour)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing name", map[string]string{"email": "ada@example.com"}},
		{"name too short", map[string]string{"name": "a", "email": "ada@example.com"}},
		{"missing email", map[string]string{"name": "ada"}},
		{"malformed email", map[string]string{"name": "ada", "email": "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := issueRequest(t, h, tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
