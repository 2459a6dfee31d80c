package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	group, err := s.groupService.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

type groupListItem struct {
	groupResponse
	Summary *models.GroupSummary `json:"summary,omitempty"`
}

// handleListGroups enriches each group with its cached summary when one
// exists. The cache may lag; the per-group summary endpoint is exact.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groupService.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]groupListItem, len(groups))
	for i, g := range groups {
		items[i] = groupListItem{groupResponse: toGroupResponse(g)}
		summary, err := s.expenseService.CachedSummary(r.Context(), g.ID)
		if err == nil {
			items[i].Summary = summary
		} else if !errors.Is(err, storage.ErrNotFound) {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groupService.GetGroup(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groupService.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	groupID := chi.URLParam(r, "groupID")
	membership, user, err := s.groupService.AddMember(r.Context(), groupID, middleware.GetUserID(r.Context()), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, memberResponse{
		UserID:   membership.UserID,
		Name:     user.Name,
		Email:    user.Email,
		IsAdmin:  membership.IsAdmin,
		JoinedAt: membership.JoinedAt,
	})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	members, users, err := s.groupService.ListMembers(r.Context(), groupID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		item := memberResponse{UserID: m.UserID, IsAdmin: m.IsAdmin, JoinedAt: m.JoinedAt}
		if u, ok := users[m.UserID]; ok {
			item.Name = u.Name
			item.Email = u.Email
		}
		resp[i] = item
	}

	writeJSON(w, http.StatusOK, resp)
}
