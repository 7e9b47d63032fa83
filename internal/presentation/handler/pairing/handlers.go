package pairing

import (
	"errors"
	"net/http"

	"github.com/pdoodle/pairing/internal/coordinator"
	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/auth"
	"github.com/pdoodle/pairing/internal/infrastructure/json"
	"github.com/pdoodle/pairing/internal/infrastructure/validate"
)

type Handler struct {
	coordinator *coordinator.Coordinator
}

func NewHandler(c *coordinator.Coordinator) *Handler {
	return &Handler{
		coordinator: c,
	}
}

// validateCode is a shape check only: six alphanumerics. Characters the
// generator never emits (0, 1, I, O) still pass and resolve through the
// store as not found, the same as any other dead code.
var validateCode = validate.Field("code",
	validate.Required(),
	validate.Length(domain.CodeLength),
	validate.Matches(`^[A-Za-z0-9]+$`, "code contains invalid characters"),
)

// CreateRoomHandler godoc
// @Summary      Create a pairing room
// @Description  Opens a WAITING room and returns its invitation code
// @Tags         pairing
// @Produce      json
// @Success      201 {object} statusResponse "Room created, WAITING"
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing authentication"
// @Failure      409 {object} map[string]interface{} "Conflict - caller already occupies a room"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Security     BearerAuth
// @Router       /room/create [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	room, err := h.coordinator.Create(r.Context(), caller)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInRoom):
			json.WriteConflictError(w, err, "You are already in a room")
		default:
			// ErrCodeExhausted lands here on purpose: an operational
			// anomaly surfaces as a generic failure.
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusCreated, waitingResponse(room.Code))
}

// JoinRoomHandler godoc
// @Summary      Join a pairing room
// @Description  Redeems an invitation code, pairing the caller with the room's creator
// @Tags         pairing
// @Accept       json
// @Produce      json
// @Param        request body joinRequest true "Invitation code (case-insensitive)"
// @Failure      400 {object} map[string]interface{} "Bad request - malformed code"
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing authentication"
// @Failure      404 {object} map[string]interface{} "Unknown or expired code"
// @Failure      409 {object} map[string]interface{} "Conflict - room full, own room, or caller already in a room"
// @Security     BearerAuth
// @Router       /room/join [post]
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	var req joinRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	code := domain.NormalizeCode(req.Code)
	if err := validateCode(code); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	room, err := h.coordinator.Join(r.Context(), caller, code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteNotFoundError(w, err, "Unknown or expired room code")
		case errors.Is(err, domain.ErrAlreadyPaired):
			json.WriteConflictError(w, err, "Room is already full")
		case errors.Is(err, domain.ErrSelfJoin):
			json.WriteConflictError(w, err, "You cannot join your own room")
		case errors.Is(err, domain.ErrAlreadyInRoom):
			json.WriteConflictError(w, err, "You are already in a room")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, statusResponseFor(domain.StatusFor(room, caller.Subject)))
}

// StatusHandler godoc
// @Summary      Poll pairing status
// @Description  Returns the caller's current state: NO_ROOM, WAITING with code, or PAIRED with partner
// @Tags         pairing
// @Produce      json
// @Success      200 {object} statusResponse
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing authentication"
// @Security     BearerAuth
// @Router       /room/status [get]
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	status, err := h.coordinator.Status(r.Context(), caller)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, statusResponseFor(status))
}

// LeaveRoomHandler godoc
// @Summary      Leave the current room
// @Description  Destroys the caller's room for both parties; a no-op without a room
// @Tags         pairing
// @Produce      json
// @Success      200 {object} statusResponse "Always NO_ROOM"
// @Failure      401 {object} map[string]interface{} "Unauthorized - missing authentication"
// @Security     BearerAuth
// @Router       /room/leave [post]
func (h *Handler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w, "Missing or invalid authentication")
		return
	}

	if err := h.coordinator.Leave(r.Context(), caller); err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, noRoomResponse())
}
