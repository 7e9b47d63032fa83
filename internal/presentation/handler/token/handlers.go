package token

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/auth"
	"github.com/pdoodle/pairing/internal/infrastructure/json"
	"github.com/pdoodle/pairing/internal/infrastructure/validate"
)

// Handler issues development tokens. In production the identity
// provider is external and this handler is never mounted.
type Handler struct {
	verifier *auth.Verifier
	tokenTTL time.Duration
}

func NewHandler(verifier *auth.Verifier, tokenTTL time.Duration) *Handler {
	return &Handler{
		verifier: verifier,
		tokenTTL: tokenTTL,
	}
}

var validateName = validate.Field("name",
	validate.Required(),
	validate.MinLength(2),
	validate.MaxLength(64),
)

var validateEmail = validate.Field("email",
	validate.Required(),
	validate.Email(),
)

// IssueTokenHandler godoc
// @Summary      Issue a development bearer token
// @Description  Signs a short-lived token for a synthetic identity; only mounted when auth.dev_tokens is set
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body tokenRequest true "Display name and email for the synthetic identity"
// @Success      200 {object} tokenResponse
// @Failure      400 {object} map[string]interface{} "Bad request - validation error"
// @Router       /auth/token [post]
func (h *Handler) IssueTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := validateName(req.Name); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	identity := domain.Identity{
		Subject: uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
	}

	signed, err := h.verifier.Issue(identity, h.tokenTTL)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, tokenResponse{
		Token:   signed,
		Subject: identity.Subject,
	})
}
