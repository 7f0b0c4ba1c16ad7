package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/memstore"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier accepts tokens of the form "good:<subject>:<email>".
type stubVerifier struct {
	claims map[string]*types.IdentityClaim
}

func (v *stubVerifier) Verify(_ context.Context, raw string) (*types.IdentityClaim, error) {
	claim, ok := v.claims[raw]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return claim, nil
}

type testServer struct {
	*Server
	store    *memstore.Store
	verifier *stubVerifier
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	verifier := &stubVerifier{claims: make(map[string]*types.IdentityClaim)}
	s, err := New(Config{Port: 0, CORSAllowedOrigins: []string{"http://localhost:5173"}}, Deps{
		Store:     store,
		Verifier:  verifier,
		JWT:       &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24, Issuer: "resume-builder"},
		RateLimit: &ratelimit.Config{Enabled: false},
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, store: store, verifier: verifier, handler: s.Handler()}
}

// login signs a user in through POST /auth/google and returns its token.
func (ts *testServer) login(t *testing.T, subject, email string) (string, uuid.UUID) {
	t.Helper()
	credential := "cred-" + subject
	ts.verifier.claims[credential] = &types.IdentityClaim{Subject: subject, Email: email, Name: subject}

	rec := ts.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": credential})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool                `json:"success"`
		Data    types.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data.Token, resp.Data.User.ID
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelopeBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNew_RequiresDeps(t *testing.T) {
	jwtCfg := &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 1}
	_, err := New(Config{}, Deps{Verifier: &stubVerifier{}, JWT: jwtCfg})
	assert.Error(t, err)
	_, err = New(Config{}, Deps{Store: memstore.New(), JWT: jwtCfg})
	assert.Error(t, err)
	_, err = New(Config{}, Deps{Store: memstore.New(), Verifier: &stubVerifier{}})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(body.Data))
}

func TestGoogleLogin(t *testing.T) {
	ts := newTestServer(t)

	token, userID := ts.login(t, "sub-1", "ada@example.com")
	assert.NotEmpty(t, token)

	// Second sign-in maps to the same user.
	_, again := ts.login(t, "sub-1", "ada@example.com")
	assert.Equal(t, userID, again)
	assert.Equal(t, 1, ts.store.UserCount())

	rec := ts.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me types.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestGoogleLogin_Failures(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "malformed body", body: "{not json", status: http.StatusBadRequest},
		{name: "missing credential", body: map[string]string{}, status: http.StatusBadRequest},
		{name: "blank credential", body: map[string]string{"credential": "   "}, status: http.StatusBadRequest},
		{name: "rejected credential", body: map[string]string{"credential": "forged"}, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/auth/google", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGoogleLogin_EmailConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t, "sub-a", "shared@example.com")

	ts.verifier.claims["cred-b"] = &types.IdentityClaim{Subject: "sub-b", Email: "shared@example.com"}
	rec := ts.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "cred-b"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/experience"},
		{http.MethodGet, "/skills"},
		{http.MethodPut, "/education/" + uuid.NewString()},
		{http.MethodDelete, "/projects/" + uuid.NewString()},
		{http.MethodGet, "/resumes"},
		{http.MethodGet, "/resumes/" + uuid.NewString()},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := ts.do(t, p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, decode(t, rec).Success)

			rec = ts.do(t, p.method, p.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/experience", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	store := memstore.New()
	s, err := New(Config{}, Deps{
		Store:    store,
		Verifier: &stubVerifier{},
		JWT:      &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 1, Issuer: "resume-builder"},
		RateLimit: &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/auth/google", Method: http.MethodPost, Limit: 2, Window: time.Minute, Burst: 2},
			},
		},
	})
	require.NoError(t, err)
	defer s.rateLimiter.Stop()
	handler := s.Handler()

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewReader([]byte(`{"credential":"x"}`)))
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	body := decode(t, last)
	assert.False(t, body.Success)
}

func TestShutdown_ClosesStore(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.Shutdown(context.Background()))
}
