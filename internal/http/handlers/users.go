package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/server/internal/auth"
	"github.com/ledgerly/server/internal/middleware"
	"github.com/ledgerly/server/internal/model"
)

// UserHandler serves /me and the admin user endpoints
type UserHandler struct {
	authService *auth.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type userResponse struct {
	ID         int64      `json:"id"`
	GUID       string     `json:"guid"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	IsVerified bool       `json:"isVerified"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func newUserResponse(u model.User) userResponse {
	return userResponse{
		ID:         u.ID,
		GUID:       u.GUID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// HandleMe handles GET /me (protected). Returns the authenticated user.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return 0, false
	}
	return id, true
}

// HandleGet handles GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

type updateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,notblank"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Role       *string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	IsVerified *bool   `json:"isVerified"`
}

// HandleUpdate handles PUT /users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := auth.UserUpdate{Name: req.Name, Email: req.Email, IsVerified: req.IsVerified}
	if req.Role != nil {
		role := model.Role(*req.Role)
		upd.Role = &role
	}

	user, err := h.authService.UpdateUser(r.Context(), id, upd)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// HandleDelete handles DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User successfully deleted", "deletedId": id})
}
