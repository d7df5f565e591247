package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateChain(t *testing.T, signer *JWTSigner, roles []Role) (http.Handler, *int) {
	t.Helper()
	calls := 0
	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, ok := FromContext(r.Context())
		assert.True(t, ok, "claims must be in context before the handler runs")
		w.WriteHeader(http.StatusOK)
	})
	if roles != nil {
		inner = RequireAnyRole(roles...)(inner)
	}
	return AuthRequired(signer)(inner), &calls
}

func TestAuthRequiredMissingToken(t *testing.T) {
	signer := newTestSigner(t, time.Hour)
	h, calls := gateChain(t, signer, nil)

	for _, header := range []string{"", "Bearer ", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	assert.Zero(t, *calls, "handler must not run without a token")
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	signer := newTestSigner(t, time.Hour)
	h, calls := gateChain(t, signer, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, *calls)
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	expired := newTestSigner(t, -time.Minute)
	token, _, err := expired.IssueToken("id1", "a@x.com", RoleAdmin)
	require.NoError(t, err)

	h, calls := gateChain(t, newTestSigner(t, time.Hour), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, *calls)
}

func TestRequireAnyRolePolicy(t *testing.T) {
	signer := newTestSigner(t, time.Hour)

	cases := []struct {
		name   string
		role   Role
		policy []Role
		want   int
	}{
		{"student denied on admin route", RoleStudent, []Role{RoleAdmin}, http.StatusForbidden},
		{"admin allowed on admin route", RoleAdmin, []Role{RoleAdmin}, http.StatusOK},
		{"teacher allowed on staff route", RoleTeacher, []Role{RoleAdmin, RoleTeacher}, http.StatusOK},
		{"student denied on staff route", RoleStudent, []Role{RoleAdmin, RoleTeacher}, http.StatusForbidden},
		// No hierarchy: a policy without admin does not admit admins.
		{"admin denied when not in policy", RoleAdmin, []Role{RoleStudent}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, _, err := signer.IssueToken("id1", "a@x.com", tc.role)
			require.NoError(t, err)

			h, _ := gateChain(t, signer, tc.policy)
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAnyRoleWithoutClaims(t *testing.T) {
	h := RequireAnyRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
