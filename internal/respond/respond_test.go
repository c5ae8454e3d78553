package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/recitals/internal/apperr"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (envelope, Message) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var msg Message
	_ = json.Unmarshal(env.Data, &msg)
	return env, msg
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"token": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env, _ := decode(t, rec)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.JSONEq(t, `{"token":"abc"}`, string(env.Data))
}

func TestJSONNullData(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)

	env, _ := decode(t, rec)
	assert.Equal(t, "null", string(env.Data))
}

func TestError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/recitals", nil)

	t.Run("known kind becomes fail envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, req, fmt.Errorf("wrapped: %w", apperr.NotFound("No recital with given id found for user")))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env, msg := decode(t, rec)
		assert.Equal(t, StatusFail, env.Status)
		assert.Equal(t, "No recital with given id found for user", msg.Message)
	})

	t.Run("unknown error hides internals", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, req, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env, msg := decode(t, rec)
		assert.Equal(t, StatusError, env.Status)
		assert.Equal(t, "Internal server error", msg.Message)
	})

	t.Run("conflict keeps message not cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, req, apperr.Conflict("Recital was modified concurrently, please retry", errors.New("UNIQUE constraint failed")))

		assert.Equal(t, http.StatusConflict, rec.Code)
		_, msg := decode(t, rec)
		assert.Equal(t, "Recital was modified concurrently, please retry", msg.Message)
	})
}
