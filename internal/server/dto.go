package server

import (
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/money"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type groupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, CreatedBy: g.CreatedBy, CreatedAt: g.CreatedAt}
}

type memberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	JoinedAt int64  `json:"joined_at"`
}

type obligationResponse struct {
	UserID string      `json:"user_id"`
	Amount money.Money `json:"amount"`
}

type expenseResponse struct {
	ID          string               `json:"id"`
	GroupID     string               `json:"group_id"`
	Description string               `json:"description"`
	Amount      money.Money          `json:"amount"`
	SplitType   string               `json:"split_type"`
	PaidBy      string               `json:"paid_by"`
	CreatedAt   int64                `json:"created_at"`
	Obligations []obligationResponse `json:"obligations"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		SplitType:   e.SplitType,
		PaidBy:      e.PaidBy,
		CreatedAt:   e.CreatedAt,
		Obligations: make([]obligationResponse, len(e.Obligations)),
	}
	for i, o := range e.Obligations {
		resp.Obligations[i] = obligationResponse{UserID: o.UserID, Amount: o.Amount}
	}
	return resp
}
