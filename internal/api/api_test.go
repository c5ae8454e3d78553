package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/recitals/internal/auth"
	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/models"
	"github.com/mmynk/recitals/internal/service"
	"github.com/mmynk/recitals/internal/storage/sqlstore"
)

type testEnv struct {
	t      *testing.T
	server *httptest.Server
	store  *sqlstore.Store
	tokens *auth.JWTManager
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestEnv(t *testing.T, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(Deps{
		Store:    store,
		Auth:     service.NewAuthService(auth.NewPasswordAuthenticator(store, bcrypt.MinCost), tokens, logger),
		Recitals: service.NewRecitalService(store),
		Songs:    service.NewSongService(store),
		Users:    service.NewUserService(store),
		Verifier: tokens,
		Limiter:  limiter,
	})

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	return &testEnv{t: t, server: server, store: store, tokens: tokens}
}

// do sends a request and decodes the envelope. body may be nil, a string
// of raw JSON or any value to marshal.
func (e *testEnv) do(method, path, token string, body any) (int, envelope) {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func (e *testEnv) message(env envelope) string {
	e.t.Helper()
	var m struct {
		Message string `json:"message"`
	}
	require.NoError(e.t, json.Unmarshal(env.Data, &m))
	return m.Message
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// registerUser registers email and returns its token.
func (e *testEnv) registerUser(email string) string {
	e.t.Helper()
	status, env := e.do(http.MethodPost, "/users/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, status)
	return decodeData[sessionResponse](e.t, env).Token
}

// adminToken seeds an admin and returns a token for it.
func (e *testEnv) adminToken() string {
	e.t.Helper()
	admin, err := service.EnsureAdmin(context.Background(), e.store, "admin@example.com", "password123", bcrypt.MinCost)
	require.NoError(e.t, err)
	token, err := e.tokens.Generate(admin)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) createSong(adminToken, title string) *models.Song {
	e.t.Helper()
	status, env := e.do(http.MethodPost, "/admin/songs", adminToken, map[string]any{
		"song": map[string]any{"title": title, "composer": "Robert Schumann", "language": "German"},
	})
	require.Equal(e.t, http.StatusCreated, status, string(env.Data))
	return decodeData[songResponse](e.t, env).Song
}

func (e *testEnv) createRecital(token, name string) *models.Recital {
	e.t.Helper()
	status, env := e.do(http.MethodPost, "/auth/recitals", token, map[string]any{
		"recital": map[string]any{"name": name},
	})
	require.Equal(e.t, http.StatusCreated, status, string(env.Data))
	return decodeData[recitalResponse](e.t, env).Recital
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := env.do(http.MethodPost, "/users/register", "", map[string]string{
		"email": "singer@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", resp.Status)
	registered := decodeData[sessionResponse](t, resp)
	assert.Equal(t, "singer@example.com", registered.Email)

	status, resp = env.do(http.MethodPost, "/users/register", "", map[string]string{
		"email": "singer@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "fail", resp.Status)
	assert.Equal(t, "Email is already registered", env.message(resp))

	status, resp = env.do(http.MethodPost, "/users/login", "", map[string]string{
		"email": "singer@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	session := decodeData[sessionResponse](t, resp)

	// The login token resolves to the same identity as the registration.
	status, resp = env.do(http.MethodGet, "/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decodeData[userResponse](t, resp).User
	regSubject, err := env.tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, regSubject, me.ID)
	assert.Equal(t, models.RoleUser, me.Role)
	assert.NotContains(t, string(resp.Data), "password")

	for _, creds := range []map[string]string{
		{"email": "singer@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		status, resp = env.do(http.MethodPost, "/users/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Incorrect email or password", env.message(resp))
	}

	status, resp = env.do(http.MethodPost, "/users/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Malformed request body", env.message(resp))
}

func TestAuthGates(t *testing.T) {
	env := newTestEnv(t, nil)
	userToken := env.registerUser("singer@example.com")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/auth/recitals"},
		{http.MethodPost, "/auth/recitals/r1/songs/s1"},
		{http.MethodGet, "/admin/users"},
		{http.MethodPost, "/admin/songs"},
		{http.MethodDelete, "/admin/songs/s1"},
	}
	for _, p := range paths {
		status, resp := env.do(p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, p.path)
		assert.Equal(t, "Missing or invalid token", env.message(resp), p.path)

		status, _ = env.do(p.method, p.path, "forged-token", nil)
		assert.Equal(t, http.StatusUnauthorized, status, p.path)
	}

	for _, path := range []string{"/admin/users", "/admin/songs", "/admin/recitals"} {
		status, resp := env.do(http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		assert.Equal(t, "Insufficient permissions", env.message(resp), path)
	}

	expired, err := env.tokens.Issue("anyone", -time.Minute)
	require.NoError(t, err)
	status, _ := env.do(http.MethodGet, "/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken()
	userToken := env.registerUser("singer@example.com")

	userID, err := env.tokens.Verify(userToken)
	require.NoError(t, err)

	status, _ := env.do(http.MethodDelete, "/admin/users/"+userID, admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, resp := env.do(http.MethodGet, "/auth/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing or invalid token", env.message(resp))
}

func TestProgramScenario(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken()
	alice := env.registerUser("alice@example.com")

	recital := env.createRecital(alice, "Test Recital")
	s1 := env.createSong(admin, "Widmung")

	path := "/auth/recitals/" + recital.ID + "/songs/" + s1.ID
	status, resp := env.do(http.MethodPost, path, alice, nil)
	require.Equal(t, http.StatusOK, status, string(resp.Data))
	got := decodeData[recitalResponse](t, resp).Recital
	require.Len(t, got.Songs, 1)
	assert.Equal(t, s1.ID, got.Songs[0].ID)
	assert.Equal(t, 0, got.Songs[0].Order)

	status, resp = env.do(http.MethodPost, path, alice, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Selected song is already part of recital", env.message(resp))

	// Another user cannot see or change the recital.
	bob := env.registerUser("bob@example.com")
	status, resp = env.do(http.MethodGet, "/auth/recitals/"+recital.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No recital with given id found for user", env.message(resp))
	status, _ = env.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProgramReorderAndRemove(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken()
	user := env.registerUser("singer@example.com")
	recital := env.createRecital(user, "Liederabend")

	songs := make([]*models.Song, 4)
	for i := range songs {
		songs[i] = env.createSong(admin, string(rune('A'+i)))
		status, _ := env.do(http.MethodPost, "/auth/recitals/"+recital.ID+"/songs/"+songs[i].ID, user, map[string]string{"notes": "encore"})
		require.Equal(t, http.StatusOK, status)
	}

	programPath := "/auth/recitals/" + recital.ID + "/songs"
	listIDs := func() []string {
		status, resp := env.do(http.MethodGet, programPath, user, nil)
		require.Equal(t, http.StatusOK, status)
		data := decodeData[programResponse](t, resp)
		program := data.Songs
		assert.Equal(t, len(program), data.Count)
		ids := make([]string, len(program))
		for i, s := range program {
			assert.Equal(t, i, s.Order)
			assert.Equal(t, "encore", s.Notes)
			ids[i] = s.ID
		}
		return ids
	}
	original := listIDs()
	require.Equal(t, []string{songs[0].ID, songs[1].ID, songs[2].ID, songs[3].ID}, original)

	status, resp := env.do(http.MethodPut, programPath, user, map[string]any{
		"songs": []map[string]any{{"id": songs[0].ID, "order": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Number of songs sent does not match number in recital", env.message(resp))
	assert.Equal(t, original, listIDs())

	reorder := map[string]any{
		"songs": []map[string]any{
			{"id": songs[0].ID, "order": 3},
			{"id": songs[1].ID, "order": 1},
			{"id": songs[2].ID, "order": 0},
			{"id": songs[3].ID, "order": 2},
		},
	}
	status, resp = env.do(http.MethodPut, programPath, user, reorder)
	require.Equal(t, http.StatusOK, status, string(resp.Data))
	want := []string{songs[2].ID, songs[1].ID, songs[3].ID, songs[0].ID}
	reordered := decodeData[programResponse](t, resp)
	assert.Equal(t, 4, reordered.Count)
	assert.Equal(t, want, listIDs())

	status, resp = env.do(http.MethodDelete, programPath+"/"+songs[1].ID, user, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{songs[2].ID, songs[3].ID, songs[0].ID}, listIDs())

	status, resp = env.do(http.MethodDelete, programPath+"/"+songs[1].ID, user, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No song with given id found on given recital", env.message(resp))

	// Deleting a catalog song closes its gap on every program.
	status, _ = env.do(http.MethodDelete, "/admin/songs/"+songs[3].ID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{songs[2].ID, songs[0].ID}, listIDs())
}

func TestRecitalCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.registerUser("singer@example.com")

	// Bare bodies are accepted as well as wrapped ones.
	status, resp := env.do(http.MethodPost, "/auth/recitals", user, map[string]any{
		"name": "Winter Concert", "date": "2024-12-20", "location": "Town Hall",
	})
	require.Equal(t, http.StatusCreated, status)
	recital := decodeData[recitalResponse](t, resp).Recital
	assert.Equal(t, "Winter Concert", recital.Name)

	status, resp = env.do(http.MethodPost, "/auth/recitals", user, map[string]any{"recital": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Recital name must be provided", env.message(resp))

	status, resp = env.do(http.MethodGet, "/auth/recitals", user, nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[recitalListResponse](t, resp)
	assert.Equal(t, 1, list.Count)

	path := "/auth/recitals/" + recital.ID
	status, resp = env.do(http.MethodPatch, path, user, map[string]any{"recital": map[string]any{"description": "Carols"}})
	require.Equal(t, http.StatusOK, status)
	patched := decodeData[recitalResponse](t, resp).Recital
	assert.Equal(t, "Carols", patched.Description)
	assert.Equal(t, "Town Hall", patched.Location)

	status, resp = env.do(http.MethodPatch, path, user, map[string]any{"recital": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No information provided", env.message(resp))

	status, resp = env.do(http.MethodPut, path, user, map[string]any{"recital": map[string]any{"name": "Spring Concert"}})
	require.Equal(t, http.StatusOK, status)
	replaced := decodeData[recitalResponse](t, resp).Recital
	assert.Equal(t, "Spring Concert", replaced.Name)
	assert.Empty(t, replaced.Location)

	status, resp = env.do(http.MethodDelete, path, user, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(resp.Data))

	status, _ = env.do(http.MethodGet, path, user, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken()
	user := env.registerUser("singer@example.com")
	env.createRecital(user, "Debut")

	status, resp := env.do(http.MethodGet, "/admin/users?limit=10", admin, nil)
	require.Equal(t, http.StatusOK, status)
	users := decodeData[userListResponse](t, resp)
	assert.Equal(t, 2, users.Count)
	assert.NotContains(t, string(resp.Data), "$2a$")

	status, resp = env.do(http.MethodGet, "/admin/recitals", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decodeData[recitalListResponse](t, resp).Count)

	// Promoting a user grants admin access on their existing token.
	userID, err := env.tokens.Verify(user)
	require.NoError(t, err)
	status, resp = env.do(http.MethodPatch, "/admin/users/"+userID, admin, map[string]string{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid role", env.message(resp))

	status, _ = env.do(http.MethodPatch, "/admin/users/"+userID, admin, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(http.MethodGet, "/admin/users", user, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(http.MethodDelete, "/admin/users/"+userID, admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, resp = env.do(http.MethodGet, "/admin/recitals", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decodeData[recitalListResponse](t, resp).Count, "recitals cascade with their owner")
}

func TestSongCatalog(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken()
	song := env.createSong(admin, "Mondnacht")

	status, resp := env.do(http.MethodGet, "/songs", "", nil)
	require.Equal(t, http.StatusOK, status)
	catalog := decodeData[songListResponse](t, resp)
	require.Equal(t, 1, catalog.Count)
	assert.Equal(t, song.ID, catalog.Songs[0].ID)

	for _, q := range []string{"?limit=0", "?limit=101", "?offset=-1", "?limit=abc"} {
		status, resp = env.do(http.MethodGet, "/songs"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, status, q)
		assert.Equal(t, "Invalid pagination parameters", env.message(resp), q)
	}

	status, resp = env.do(http.MethodGet, "/songs?offset=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decodeData[songListResponse](t, resp).Count)

	status, resp = env.do(http.MethodPost, "/admin/songs", admin, map[string]any{"song": map[string]any{"title": "No Composer"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Song missing required information", env.message(resp))

	status, resp = env.do(http.MethodPatch, "/admin/songs/"+song.ID, admin, map[string]any{"song": map[string]any{"period": "Romantic"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Romantic", decodeData[songResponse](t, resp).Song.Period)

	status, resp = env.do(http.MethodGet, "/admin/songs/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No song with given id found", env.message(resp))
}

func TestRoutingErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp := env.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", env.message(resp))

	status, resp = env.do(http.MethodDelete, "/songs", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method not allowed", env.message(resp))

	status, resp = env.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", env.message(resp))

	status, _ = env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/auth/recitals", nil)
	require.NoError(t, err)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight, err := env.server.Client().Do(req)
	require.NoError(t, err)
	preflight.Body.Close()
	assert.Equal(t, http.StatusNoContent, preflight.StatusCode)

	metrics, err := env.server.Client().Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(metrics.Body)
	metrics.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, middleware.NewRateLimiter(0.01, 2))

	creds := map[string]string{"email": "nobody@example.com", "password": "password123"}
	for i := 0; i < 2; i++ {
		status, _ := env.do(http.MethodPost, "/users/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, resp := env.do(http.MethodPost, "/users/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Too many requests, please try again later", env.message(resp))

	// Other routes are not throttled.
	status, _ = env.do(http.MethodGet, "/songs", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
