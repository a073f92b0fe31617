package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	a := NewAuthenticator("admin-key", "client-key")

	tests := []struct {
		name     string
		header   string
		wantOK   bool
		wantRole Role
		wantErr  string
	}{
		{name: "admin key", header: "Bearer admin-key", wantOK: true, wantRole: RoleAdmin},
		{name: "client key", header: "Bearer client-key", wantOK: true, wantRole: RoleReadonly},
		{name: "wrong key", header: "Bearer nope", wantErr: "invalid token"},
		{name: "missing header", header: "", wantErr: "missing bearer token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Authenticate(context.Background(), tt.header)
			if result.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", result.Authenticated, tt.wantOK)
			}
			if tt.wantOK && result.Role != tt.wantRole {
				t.Fatalf("Role = %s, want %s", result.Role, tt.wantRole)
			}
			if !tt.wantOK && result.Error != tt.wantErr {
				t.Fatalf("Error = %q, want %q", result.Error, tt.wantErr)
			}
		})
	}
}

func TestAuthenticator_HashedConfiguredKeys(t *testing.T) {
	adminKey := "rk_admin-plain"
	adminHash, err := HashAPIKey(adminKey)
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}
	a := NewAuthenticator(adminHash, "client-key")

	result := a.Authenticate(context.Background(), "Bearer "+adminKey)
	if !result.Authenticated || result.Role != RoleAdmin {
		t.Fatalf("hashed admin key rejected: %+v", result)
	}

	// Presenting the hash itself must not authenticate.
	result = a.Authenticate(context.Background(), "Bearer "+adminHash)
	if result.Authenticated {
		t.Fatal("the stored hash must not work as a token")
	}

	result = a.Authenticate(context.Background(), "Bearer client-key")
	if !result.Authenticated || result.Role != RoleReadonly {
		t.Fatalf("plain client key rejected: %+v", result)
	}
}

func TestAuthenticator_EmptyConfiguredKeys(t *testing.T) {
	// An empty configured key must never authenticate an empty-ish token.
	a := NewAuthenticator("", "")
	result := a.Authenticate(context.Background(), "Bearer anything")
	if result.Authenticated {
		t.Fatal("no configured keys should authenticate nothing")
	}
}

func TestRequireAuth(t *testing.T) {
	a := NewAuthenticator("admin-key", "client-key")

	var seenRole Role
	handler := a.RequireAuth(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRole, _ = GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "admin allowed", header: "Bearer admin-key", wantStatus: http.StatusNoContent},
		{name: "readonly forbidden", header: "Bearer client-key", wantStatus: http.StatusForbidden},
		{name: "unknown key unauthorized", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "no header unauthorized", header: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}

	if seenRole != RoleAdmin {
		t.Fatalf("handler saw role %s, want %s", seenRole, RoleAdmin)
	}
}

func TestGetRoleFromContext(t *testing.T) {
	if _, ok := GetRoleFromContext(context.Background()); ok {
		t.Fatal("bare context should carry no role")
	}
	ctx := context.WithValue(context.Background(), ContextKeyRole, RoleReadonly)
	role, ok := GetRoleFromContext(ctx)
	if !ok || role != RoleReadonly {
		t.Fatalf("role = %s, ok = %v", role, ok)
	}
}
