package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grouptab/grouptab/internal/calculator"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/service"
)

type contributionRequest struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type createExpenseRequest struct {
	Description   string                `json:"description"`
	Amount        string                `json:"amount"`
	SplitType     string                `json:"split_type"`
	PaidBy        string                `json:"paid_by"`
	Contributions []contributionRequest `json:"contributions"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contributions := make([]calculator.Contribution, len(req.Contributions))
	for i, c := range req.Contributions {
		contributions[i] = calculator.Contribution{MemberID: c.UserID, Amount: c.Amount}
	}

	expense, err := s.expenseService.CreateExpense(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()), service.CreateExpenseInput{
		Description:   req.Description,
		Amount:        req.Amount,
		SplitType:     req.SplitType,
		PaidBy:        req.PaidBy,
		Contributions: contributions,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenseService.ListExpenses(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGroupSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.expenseService.Summary(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
