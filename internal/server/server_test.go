package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjali918/Student-Management-System/internal/auth"
	"github.com/anjali918/Student-Management-System/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{
		JWTSecret: "test-signing-secret",
		JWTIssuer: "edumanage-test",
		TokenTTL:  time.Hour,
		MongoURI:  "unused",
		MongoDB:   "unused",
	}
	s, err := NewWithStores(cfg, zerolog.Nop(),
		auth.NewMemoryUserStore(),
		storage.NewMemoryStudentStore(),
		storage.NewMemoryCourseStore(),
	)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = fmt.Sprintf("127.0.0.%d:1234", len(path)%250+1)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// seedAccount creates an account directly through the service and returns a
// fresh token for it.
func seedAccount(t *testing.T, s *Server, name, email string, role auth.Role) string {
	t.Helper()
	_, err := s.authsvc.CreateUser(context.Background(), auth.SignupRequest{
		Name:     name,
		Email:    email,
		Password: "Secret123!",
		Role:     role,
	})
	require.NoError(t, err)

	res, err := s.authsvc.Login(context.Background(), auth.LoginRequest{Email: email, Password: "Secret123!"})
	require.NoError(t, err)
	return res.Token
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decode(t, rec)["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/students", "/api/courses", "/api/users"} {
		rec := do(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := do(t, s, http.MethodGet, "/api/students", "garbage-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// The end-to-end admission scenario: a self-registered student may read but
// not write student records.
func TestStudentSignupLoginAndAccess(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "Secret123!", "role": "student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "student", user["role"])
	assert.Equal(t, false, user["approved"])
	assert.NotContains(t, rec.Body.String(), "pass_hash")

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	rec = do(t, s, http.MethodGet, "/api/students", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/students", token, map[string]any{
		"name": "X", "email": "x@x.com",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignupRejectsElevatedRoleAndDuplicates(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Evil", "email": "evil@x.com", "password": "Secret123!", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same identity, different case.
	rec = do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A2", "email": "A@X.com", "password": "Other456!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestServer(t)
	seedAccount(t, s, "A", "a@x.com", auth.RoleStudent)

	rec := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "WrongSecret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])

	rec = do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@x.com", "password": "WrongSecret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])
}

func TestLoginRateLimitPerIdentity(t *testing.T) {
	s := newTestServer(t)
	seedAccount(t, s, "A", "a@x.com", auth.RoleStudent)

	// Identity bucket allows 5 per window; the sixth attempt trips it.
	var last int
	for i := 0; i < 6; i++ {
		rec := do(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "a@x.com", "password": "Secret123!",
		})
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestUserRoutesAreAdminOnly(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)
	studentTok := seedAccount(t, s, "S", "s@x.com", auth.RoleStudent)
	teacherTok := seedAccount(t, s, "T", "t@x.com", auth.RoleTeacher)

	for _, tok := range []string{studentTok, teacherTok} {
		rec := do(t, s, http.MethodGet, "/api/users", tok, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/api/users", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	users := decode(t, rec)["users"].([]any)
	assert.Len(t, users, 3)
}

func TestAdminCreatesElevatedUser(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)

	rec := do(t, s, http.MethodPost, "/api/users", adminTok, map[string]string{
		"name": "T", "email": "t@x.com", "password": "Secret123!", "role": "teacher",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "teacher", user["role"])
	assert.Equal(t, false, user["approved"])

	// Admin-created admins are auto-approved.
	rec = do(t, s, http.MethodPost, "/api/users", adminTok, map[string]string{
		"name": "Root2", "email": "root2@x.com", "password": "Secret123!", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user = decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, true, user["approved"])
}

func TestApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)

	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["user"].(map[string]any)["id"].(string)

	rec = do(t, s, http.MethodGet, "/api/users/pending/all", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode(t, rec)["users"].([]any)
	require.Len(t, pending, 1)

	rec = do(t, s, http.MethodPatch, "/api/users/"+id+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, true, user["approved"])
	assert.NotEmpty(t, user["approvedAt"])
	assert.NotEmpty(t, user["approvedBy"])

	rec = do(t, s, http.MethodGet, "/api/users/pending/all", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["users"])

	rec = do(t, s, http.MethodPatch, "/api/users/000000000000000000000000/approve", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkApprove(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)

	ids := make([]string, 0, 2)
	for _, email := range []string{"a@x.com", "b@x.com"} {
		rec := do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"name": "U", "email": email, "password": "Secret123!",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode(t, rec)["user"].(map[string]any)["id"].(string))
	}

	rec := do(t, s, http.MethodPost, "/api/users/bulk-approve", adminTok, map[string]any{"userIds": ids})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["modifiedCount"])

	// Already approved: nothing left to modify.
	rec = do(t, s, http.MethodPost, "/api/users/bulk-approve", adminTok, map[string]any{"userIds": ids})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["modifiedCount"])

	rec = do(t, s, http.MethodPost, "/api/users/bulk-approve", adminTok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)

	rec := do(t, s, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A", "email": "a@x.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["user"].(map[string]any)["id"].(string)

	rec = do(t, s, http.MethodPut, "/api/users/"+id, adminTok, map[string]any{
		"name": "Renamed", "role": "teacher",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Renamed", user["name"])
	assert.Equal(t, "teacher", user["role"])
	assert.Equal(t, "a@x.com", user["email"], "omitted fields stay untouched")

	rec = do(t, s, http.MethodPut, "/api/users/"+id, adminTok, map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/users/"+id, adminTok, map[string]any{"email": "root@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "email of another account")

	rec = do(t, s, http.MethodDelete, "/api/users/"+id, adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/users/"+id, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentCRUD(t *testing.T) {
	s := newTestServer(t)
	teacherTok := seedAccount(t, s, "T", "t@x.com", auth.RoleTeacher)

	rec := do(t, s, http.MethodPost, "/api/students", teacherTok, map[string]any{
		"name": "Student One", "email": "s1@x.com", "gpa": 3.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	st := decode(t, rec)["student"].(map[string]any)
	id := st["id"].(string)
	assert.Equal(t, "active", st["status"], "status defaults to active")

	rec = do(t, s, http.MethodPost, "/api/students", teacherTok, map[string]any{
		"name": "Clone", "email": "S1@X.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate email")

	rec = do(t, s, http.MethodPost, "/api/students", teacherTok, map[string]any{
		"name": "No Email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/students", teacherTok, map[string]any{
		"name": "Bad GPA", "email": "bad@x.com", "gpa": 4.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/students/"+id, teacherTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/students/"+id, teacherTok, map[string]any{
		"name": "Student One", "email": "s1@x.com", "gpa": 3.9, "status": "graduated",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	st = decode(t, rec)["student"].(map[string]any)
	assert.Equal(t, 3.9, st["gpa"])
	assert.Equal(t, "graduated", st["status"])

	rec = do(t, s, http.MethodDelete, "/api/students/"+id, teacherTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/students/"+id, teacherTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/students/"+id, teacherTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseCRUD(t *testing.T) {
	s := newTestServer(t)
	adminTok := seedAccount(t, s, "Root", "root@x.com", auth.RoleAdmin)
	studentTok := seedAccount(t, s, "S", "s@x.com", auth.RoleStudent)

	rec := do(t, s, http.MethodPost, "/api/courses", adminTok, map[string]any{
		"name": "Web Development", "code": "web101",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode(t, rec)["course"].(map[string]any)
	id := c["id"].(string)
	assert.Equal(t, "WEB101", c["code"], "codes are stored uppercase")
	assert.Equal(t, float64(3), c["credits"], "credits default to 3")
	assert.Equal(t, float64(12), c["duration"], "duration defaults to 12")

	rec = do(t, s, http.MethodPost, "/api/courses", adminTok, map[string]any{
		"name": "Other", "code": "WEB101",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate code")

	// Students can read the catalog but not write it.
	rec = do(t, s, http.MethodGet, "/api/courses", studentTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["courses"].([]any), 1)

	rec = do(t, s, http.MethodPut, "/api/courses/"+id, studentTok, map[string]any{
		"name": "Hacked", "code": "WEB101",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/courses/"+id, adminTok, map[string]any{
		"name": "Web Development II", "code": "WEB101", "credits": 4, "status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	c = decode(t, rec)["course"].(map[string]any)
	assert.Equal(t, "Web Development II", c["name"])
	assert.Equal(t, float64(4), c["credits"])
	assert.Equal(t, "completed", c["status"])

	rec = do(t, s, http.MethodDelete, "/api/courses/"+id, adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/courses/"+id, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidBodyIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.RemoteAddr = "127.0.0.9:1234"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigRequiresSecret(t *testing.T) {
	cfg := Config{MongoURI: "mongodb://localhost", MongoDB: "edumanage"}
	cfg.setDefaults()
	assert.Error(t, cfg.validate())

	cfg.JWTSecret = "s"
	assert.NoError(t, cfg.validate())
}
