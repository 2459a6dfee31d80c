package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/service"
	"github.com/grouptab/grouptab/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "grouptab-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-for-unit-tests", time.Hour)
	srv := New(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store),
		service.NewGroupService(store),
		service.NewExpenseService(store),
		jwtManager,
	)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a request and decodes the JSON response into out (if non-nil).
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, ts *httptest.Server, email, name string) (userID, token string) {
	t.Helper()

	var resp authResponse
	status := doJSON(t, ts, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": "password123",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}
	return resp.User.ID, resp.Token
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	_, token := register(t, ts, "alice@example.com", "Alice")

	t.Run("login", func(t *testing.T) {
		var resp authResponse
		status := doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "password123",
		}, &resp)
		if status != http.StatusOK || resp.Token == "" {
			t.Errorf("got status %d, token %q", status, resp.Token)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", status)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "alice@example.com",
			"name":     "Alice Again",
			"password": "password123",
		}, nil)
		if status != http.StatusConflict {
			t.Errorf("got status %d, want 409", status)
		}
	})

	t.Run("me", func(t *testing.T) {
		var resp userResponse
		status := doJSON(t, ts, http.MethodGet, "/api/v1/auth/me", token, nil, &resp)
		if status != http.StatusOK || resp.Email != "alice@example.com" {
			t.Errorf("got status %d, user %+v", status, resp)
		}
	})

	t.Run("me without token", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, "/api/v1/auth/me", "", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("got status %d, want 401", status)
		}
	})
}

func TestGroupAndExpenseFlow(t *testing.T) {
	ts := newTestServer(t)

	_, aliceToken := register(t, ts, "alice@example.com", "Alice")
	bobID, bobToken := register(t, ts, "bob@example.com", "Bob")
	_, carolToken := register(t, ts, "carol@example.com", "Carol")

	var group groupResponse
	status := doJSON(t, ts, http.MethodPost, "/api/v1/groups", aliceToken, map[string]string{"name": "Roommates"}, &group)
	if status != http.StatusCreated {
		t.Fatalf("create group returned %d", status)
	}

	t.Run("add member", func(t *testing.T) {
		var member memberResponse
		status := doJSON(t, ts, http.MethodPost, "/api/v1/groups/"+group.ID+"/members", aliceToken,
			map[string]string{"email": "bob@example.com"}, &member)
		if status != http.StatusCreated || member.UserID != bobID {
			t.Fatalf("got status %d, member %+v", status, member)
		}
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/v1/groups/"+group.ID+"/members", aliceToken,
			map[string]string{"email": "nobody@example.com"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", status)
		}
	})

	t.Run("create equal expense", func(t *testing.T) {
		var expense expenseResponse
		status := doJSON(t, ts, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", aliceToken,
			map[string]any{"description": "Groceries", "amount": "90.00", "split_type": "equal"}, &expense)
		if status != http.StatusCreated {
			t.Fatalf("got status %d", status)
		}
		if len(expense.Obligations) != 2 {
			t.Errorf("got %d obligations, want 2", len(expense.Obligations))
		}
	})

	t.Run("invalid split rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/v1/groups/"+group.ID+"/expenses", aliceToken,
			map[string]any{
				"description": "Dinner",
				"amount":      "100.00",
				"split_type":  "custom",
				"contributions": []map[string]string{
					{"user_id": bobID, "amount": "100.00"},
				},
			}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", status)
		}
	})

	t.Run("summary", func(t *testing.T) {
		var summary struct {
			ExpenseCount int    `json:"expense_count"`
			MemberCount  int    `json:"member_count"`
			TotalAmount  string `json:"total_amount"`
		}
		status := doJSON(t, ts, http.MethodGet, "/api/v1/groups/"+group.ID+"/summary", bobToken, nil, &summary)
		if status != http.StatusOK {
			t.Fatalf("got status %d", status)
		}
		if summary.ExpenseCount != 1 || summary.MemberCount != 2 || summary.TotalAmount != "90.00" {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, "/api/v1/groups/"+group.ID+"/summary", carolToken, nil, nil)
		if status != http.StatusForbidden {
			t.Errorf("got status %d, want 403", status)
		}
	})

	t.Run("missing group", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, "/api/v1/groups/missing/summary", aliceToken, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("got status %d, want 404", status)
		}
	})

	t.Run("non-creator cannot delete", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodDelete, "/api/v1/groups/"+group.ID, bobToken, nil, nil)
		if status != http.StatusForbidden {
			t.Errorf("got status %d, want 403", status)
		}
	})

	t.Run("list groups includes cached summary", func(t *testing.T) {
		var items []groupListItem
		status := doJSON(t, ts, http.MethodGet, "/api/v1/groups", aliceToken, nil, &items)
		if status != http.StatusOK || len(items) != 1 {
			t.Fatalf("got status %d, %d groups", status, len(items))
		}
		if items[0].Summary == nil || items[0].Summary.ExpenseCount != 1 {
			t.Errorf("cached summary missing from listing: %+v", items[0].Summary)
		}
	})
}
