package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
	"github.com/baiyuheniao/BaiyuSpace/jwt"
	"github.com/baiyuheniao/BaiyuSpace/store"
)

const testSecret = "httpapi-test-secret-0123456789ab"

func newTestServer(t *testing.T) (*httptest.Server, *baiyuspace.Engine) {
	t.Helper()

	engine, err := baiyuspace.NewEngine(baiyuspace.Config{
		Token: jwt.Config{
			Secret:    []byte(testSecret),
			AccessTTL: time.Hour,
		},
	}, store.NewMemory())
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(engine).Router())
	t.Cleanup(srv.Close)

	return srv, engine
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterScenario(t *testing.T) {
	srv, engine := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	require.Contains(t, body, "token")

	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "user payload missing")
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	identity, err := engine.VerifyToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, baiyuspace.RoleUser, identity.Role)
}

func TestRegisterMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users/register", map[string]string{
		"username": "alice",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestRegisterDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	}

	resp := postJSON(t, srv.URL+"/api/users/register", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	payload["username"] = "alice2"
	resp = postJSON(t, srv.URL+"/api/users/register", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "token")
}

func TestLoginByEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"username": "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
}

func TestMeRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/users/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decodeBody(t, resp)["token"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	body := decodeBody(t, meResp)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
}

func TestMeTokenStates(t *testing.T) {
	srv, _ := newTestServer(t)

	// Deleted-user token: valid signature, id that no longer exists.
	mgr, err := jwt.NewManager(jwt.Config{Secret: []byte(testSecret), AccessTTL: time.Hour})
	require.NoError(t, err)
	ghostToken, err := mgr.Issue(9999, "ghost", "user")
	require.NoError(t, err)

	expiredToken, err := mgr.IssueWithTTL(1, "alice", "user", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"invalid token", "Bearer forged.token.value", http.StatusForbidden},
		{"deleted user", "Bearer " + ghostToken, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/users/me", nil)
			require.NoError(t, err)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestStatusRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestDevModeErrorDetail(t *testing.T) {
	// A store that always fails drives the 500 path.
	engine, err := baiyuspace.NewEngine(baiyuspace.Config{
		Token: jwt.Config{Secret: []byte(testSecret), AccessTTL: time.Hour},
	}, failingStore{})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(engine, WithDevMode(true)).Router())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/users/login", map[string]string{
		"username": "alice",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "internal server error", body["message"])
	assert.Contains(t, body, "error")
}

type failingStore struct{}

func (failingStore) FindByIdentifier(ctx context.Context, identifier string) (*store.User, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) FindByID(ctx context.Context, id int64) (*store.User, error) {
	return nil, context.DeadlineExceeded
}

func (failingStore) Create(ctx context.Context, u *store.User) (*store.User, error) {
	return nil, context.DeadlineExceeded
}
