package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"alumnos-service/internal/app"
	"alumnos-service/internal/config"
	"alumnos-service/internal/metrics"
	"alumnos-service/internal/student"
	"alumnos-service/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, (*student.Student)(nil))

	cfg := &config.Config{Server: config.ServerConfig{CORSOrigins: []string{"*"}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := app.NewRouter(cfg, pgContainer.DB, metrics.NewMock(), logger)

	serve := func(method, path string, body []byte) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("StudentsAPI", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "alumnos")

		body, _ := json.Marshal(map[string]interface{}{
			"firstName": "Ana",
			"lastName":  "Lopez",
			"age":       21,
			"email":     "ana@x.com",
			"major":     "CS",
		})
		w := serve(http.MethodPost, "/api/alumnos", body)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = serve(http.MethodGet, "/api/alumnos", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var students []student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&students))
		assert.Len(t, students, 1)
	})

	t.Run("UnknownAPIRoute", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/cursos", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "Resource not found"}`, w.Body.String())
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		w := serve(http.MethodPatch, "/api/alumnos/1", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error": "Method not allowed"}`, w.Body.String())
	})

	t.Run("Diagnostics", func(t *testing.T) {
		w := serve(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = serve(http.MethodGet, "/ready", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = serve(http.MethodGet, "/api/test-db", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
	})

	t.Run("UIFallback", func(t *testing.T) {
		w := serve(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Student Records</title>")

		w = serve(http.MethodGet, "/some/client/route", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Student Records</title>")
	})
}
