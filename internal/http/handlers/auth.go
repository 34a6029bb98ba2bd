package handlers

import (
	"net/http"

	"github.com/ledgerly/server/internal/auth"
)

// AuthHandler handles the public authentication and password-reset endpoints
type AuthHandler struct {
	authService *auth.AuthService
	devMode     bool
}

// NewAuthHandler creates a new auth handler. In devMode forgot-password echoes the code.
func NewAuthHandler(authService *auth.AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{authService: authService, devMode: devMode}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

func newLoginResponse(res auth.LoginResult) loginResponse {
	return loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		Email:        res.Email,
		Name:         res.Name,
	}
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLoginResponse(res))
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,notblank"`
}

type profileSummary struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    profileSummary `json:"user"`
}

// HandleRegister handles POST /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    profileSummary{Email: user.Email, Name: user.Name},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// HandleRefresh handles POST /auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLoginResponse(res))
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// HandleForgotPassword handles POST /users/forgot-password
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	code, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	resp := statusResponse{Status: "success", Message: "OTP sent successfully. Check your email"}
	if h.devMode {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// HandleVerifyOTP handles POST /users/verify-otp
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "verified", Message: "OTP verified successfully"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// HandleResetPassword handles POST /users/reset-password
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
