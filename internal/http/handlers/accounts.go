package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/account"
	"github.com/ledgerly/server/internal/middleware"
	"github.com/ledgerly/server/internal/model"
)

// AccountHandler serves /accounts for the authenticated user
type AccountHandler struct {
	accounts *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountResponse struct {
	ID          uuid.UUID          `json:"id"`
	UserID      int64              `json:"userId"`
	Name        string             `json:"name"`
	Balance     float64            `json:"balance"`
	Type        *model.AccountType `json:"type"`
	Description *string            `json:"description"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func newAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Name:        a.Name,
		Balance:     a.Balance,
		Type:        a.Type,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type createAccountRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=100"`
	Balance     *float64 `json:"balance" validate:"omitempty,gte=0"`
	Type        *string  `json:"type" validate:"omitempty,oneof=CASH BANK CREDIT DEBIT WALLET OTHER"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
}

type updateAccountRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,notblank,max=100"`
	Balance     *float64 `json:"balance" validate:"omitempty,gte=0"`
	Type        *string  `json:"type" validate:"omitempty,oneof=CASH BANK CREDIT DEBIT WALLET OTHER"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
}

func accountType(s *string) *model.AccountType {
	if s == nil {
		return nil
	}
	t := model.AccountType(*s)
	return &t
}

// ownerAndID resolves the caller and the uuid path parameter named param.
func ownerAndID(w http.ResponseWriter, r *http.Request, param string) (int64, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
		return 0, uuid.Nil, false
	}
	if param == "" {
		return userID, uuid.Nil, true
	}
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", param+" must be a valid UUID")
		return 0, uuid.Nil, false
	}
	return userID, id, true
}

// HandleCreate handles POST /accounts
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := ownerAndID(w, r, "")
	if !ok {
		return
	}
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := account.CreateInput{Name: req.Name, Type: accountType(req.Type), Description: req.Description}
	if req.Balance != nil {
		in.Balance = *req.Balance
	}
	a, err := h.accounts.Create(r.Context(), userID, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(a))
}

// HandleList handles GET /accounts
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := ownerAndID(w, r, "")
	if !ok {
		return
	}
	accounts, err := h.accounts.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, newAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /accounts/{accountId}
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "accountId")
	if !ok {
		return
	}
	a, err := h.accounts.Get(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// HandleUpdate handles PUT /accounts/{accountId}
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "accountId")
	if !ok {
		return
	}
	var req updateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accounts.Update(r.Context(), userID, id, account.UpdateInput{
		Name:        req.Name,
		Balance:     req.Balance,
		Type:        accountType(req.Type),
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// HandleDelete handles DELETE /accounts/{accountId}
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "accountId")
	if !ok {
		return
	}
	if err := h.accounts.Delete(r.Context(), userID, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Account successfully deleted", "deletedId": id})
}
