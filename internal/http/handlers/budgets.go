package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/budget"
	"github.com/ledgerly/server/internal/model"
)

const dateLayout = time.DateOnly

// BudgetHandler serves /budgets for the authenticated user
type BudgetHandler struct {
	budgets *budget.Service
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgets *budget.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type budgetResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          int64     `json:"userId"`
	Name            string    `json:"name"`
	Amount          float64   `json:"amount"`
	RemainingAmount float64   `json:"remainingAmount"`
	StartDate       string    `json:"startDate"`
	EndDate         *string   `json:"endDate"`
	CategoryID      *string   `json:"categoryId"`
	IsRecurring     bool      `json:"isRecurring"`
	RecurrenceType  string    `json:"recurrenceType"`
	ResetDay        int       `json:"resetDay"`
	NextResetDate   *string   `json:"nextResetDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func newBudgetResponse(b model.Budget) budgetResponse {
	return budgetResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		Name:            b.Name,
		Amount:          b.Amount,
		RemainingAmount: b.RemainingAmount,
		StartDate:       b.StartDate.Format(dateLayout),
		EndDate:         formatDate(b.EndDate),
		CategoryID:      b.CategoryID,
		IsRecurring:     b.IsRecurring,
		RecurrenceType:  b.RecurrenceType,
		ResetDay:        b.ResetDay,
		NextResetDate:   formatDate(b.NextResetDate),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type createBudgetRequest struct {
	Name           string   `json:"name" validate:"required,notblank,max=100"`
	Amount         *float64 `json:"amount" validate:"required,gte=0"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	CategoryID     *string  `json:"categoryId"`
	IsRecurring    bool     `json:"isRecurring"`
	RecurrenceType string   `json:"recurrenceType" validate:"omitempty,oneof=monthly weekly yearly"`
	ResetDay       int      `json:"resetDay" validate:"omitempty,min=1,max=31"`
	NextResetDate  *string  `json:"nextResetDate" validate:"omitempty,datetime=2006-01-02"`
}

type updateBudgetRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,notblank,max=100"`
	Amount          *float64 `json:"amount" validate:"omitempty,gte=0"`
	RemainingAmount *float64 `json:"remainingAmount"`
	StartDate       *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate         *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	CategoryID      *string  `json:"categoryId"`
	IsRecurring     *bool    `json:"isRecurring"`
	RecurrenceType  *string  `json:"recurrenceType" validate:"omitempty,oneof=monthly weekly yearly"`
	ResetDay        *int     `json:"resetDay" validate:"omitempty,min=1,max=31"`
	NextResetDate   *string  `json:"nextResetDate" validate:"omitempty,datetime=2006-01-02"`
}

// parseDate parses a date already checked by the validator.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// HandleCreate handles POST /budgets
func (h *BudgetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := ownerAndID(w, r, "")
	if !ok {
		return
	}
	var req createBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.budgets.Create(r.Context(), userID, budget.CreateInput{
		Name:           req.Name,
		Amount:         *req.Amount,
		StartDate:      *parseDate(&req.StartDate),
		EndDate:        parseDate(req.EndDate),
		CategoryID:     req.CategoryID,
		IsRecurring:    req.IsRecurring,
		RecurrenceType: req.RecurrenceType,
		ResetDay:       req.ResetDay,
		NextResetDate:  parseDate(req.NextResetDate),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newBudgetResponse(b))
}

// HandleList handles GET /budgets
func (h *BudgetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := ownerAndID(w, r, "")
	if !ok {
		return
	}
	budgets, err := h.budgets.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	resp := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		resp = append(resp, newBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /budgets/{budgetId}
func (h *BudgetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "budgetId")
	if !ok {
		return
	}
	b, err := h.budgets.Get(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetResponse(b))
}

// HandleUpdate handles PUT /budgets/{budgetId}
func (h *BudgetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "budgetId")
	if !ok {
		return
	}
	var req updateBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.budgets.Update(r.Context(), userID, id, budget.UpdateInput{
		Name:            req.Name,
		Amount:          req.Amount,
		RemainingAmount: req.RemainingAmount,
		StartDate:       parseDate(req.StartDate),
		EndDate:         parseDate(req.EndDate),
		CategoryID:      req.CategoryID,
		IsRecurring:     req.IsRecurring,
		RecurrenceType:  req.RecurrenceType,
		ResetDay:        req.ResetDay,
		NextResetDate:   parseDate(req.NextResetDate),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetResponse(b))
}

// HandleDelete handles DELETE /budgets/{budgetId}
func (h *BudgetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := ownerAndID(w, r, "budgetId")
	if !ok {
		return
	}
	if err := h.budgets.Delete(r.Context(), userID, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Budget successfully deleted", "deletedId": id})
}
