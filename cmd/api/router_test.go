package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authRepo "reliance-backend/internal/auth/repository"
	authUsecase "reliance-backend/internal/auth/usecase"
	taskdomain "reliance-backend/internal/task/domain"
	taskRepo "reliance-backend/internal/task/repository"
	taskUsecase "reliance-backend/internal/task/usecase"
	zoneRepo "reliance-backend/internal/valuezone/repository"
	zoneUsecase "reliance-backend/internal/valuezone/usecase"
	"reliance-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "client-secret"

func setupTestServer(checks map[string]ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ServiceName:      "reliance-test",
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
		SharedSecrets:    []string{testSecret},
		CORSOrigins:      []string{"*"},
	}
	authUc := authUsecase.NewAuthUsecase(authRepo.NewMemoryUserRepository(), cfg)
	taskUc := taskUsecase.NewTaskUsecase(taskRepo.NewMemoryTaskRepository(), nil)
	zoneUc := zoneUsecase.NewValueZoneUsecase(zoneRepo.NewMemoryValueZoneRepository())
	return NewHandler(cfg, authUc, taskUc, zoneUc, nil, checks).Router()
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reliance-Authorization", testSecret)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) login(email string) {
	w := c.do(http.MethodPost, "/v1/auth/register", map[string]string{
		"email": email, "password": "Secret123!", "firstName": "Test", "lastName": "User",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.token = resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	router := setupTestServer(nil)

	req, _ := http.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "timestamp")
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "uptimeSeconds")
}

func TestReady(t *testing.T) {
	router := setupTestServer(map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})

	for _, path := range []string{"/v1/health/ready", "/v1/health/readiness"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"ok","redis":"connection refused"}}`, w.Body.String())
	}
}

func TestReadinessAliasReportsReady(t *testing.T) {
	router := setupTestServer(map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
	})

	req, _ := http.NewRequest(http.MethodGet, "/v1/health/readiness", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"database":"ok"}}`, w.Body.String())
}

func TestProtectedRoutesRequireSecretThenToken(t *testing.T) {
	router := setupTestServer(nil)

	req, _ := http.NewRequest(http.MethodGet, "/v1/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c := &client{t: t, router: router}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/tasks", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/value-zones", nil).Code)

	c.login("ada@example.com")
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/tasks", nil).Code)
}

func TestTaskHierarchyEndToEnd(t *testing.T) {
	router := setupTestServer(nil)
	c := &client{t: t, router: router}
	c.login("ada@example.com")

	w := c.do(http.MethodPost, "/v1/value-zones", map[string]string{"name": "Work", "priority": "HIGH"})
	require.Equal(t, http.StatusCreated, w.Code)
	var zone struct {
		ID string `json:"id"`
	}
	decode(t, w, &zone)

	newTask := func(title string) map[string]interface{} {
		return map[string]interface{}{
			"title":                 title,
			"valueZoneId":           zone.ID,
			"brainpower":            "LOW",
			"effortEstimateMinutes": 30,
		}
	}

	w = c.do(http.MethodPost, "/v1/tasks", newTask("Launch"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var parent taskdomain.Task
	decode(t, w, &parent)

	sub := newTask("Write copy")
	sub["order"] = 0
	w = c.do(http.MethodPost, "/v1/tasks/"+parent.ID+"/subtasks", sub)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var child taskdomain.Task
	decode(t, w, &child)

	w = c.do(http.MethodPost, "/v1/tasks", newTask("Book venue"))
	require.Equal(t, http.StatusCreated, w.Code)
	var other taskdomain.Task
	decode(t, w, &other)

	w = c.do(http.MethodPost, "/v1/tasks/"+parent.ID+"/subtasks/"+other.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/v1/tasks/"+parent.ID+"/subtasks/"+other.ID, nil).Code)

	w = c.do(http.MethodGet, "/v1/tasks/"+parent.ID+"/subtasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subtasks []taskdomain.Task
	decode(t, w, &subtasks)
	require.Len(t, subtasks, 2)
	assert.Equal(t, child.ID, subtasks[0].ID)
	assert.Equal(t, other.ID, subtasks[1].ID)

	// another user sees nothing
	intruder := &client{t: t, router: router}
	intruder.login("eve@example.com")
	assert.Equal(t, http.StatusNotFound, intruder.do(http.MethodGet, "/v1/tasks/"+parent.ID, nil).Code)
	assert.Equal(t, http.StatusForbidden, intruder.do(http.MethodDelete, "/v1/tasks/"+parent.ID, nil).Code)

	w = c.do(http.MethodDelete, "/v1/tasks/"+parent.ID+"?deleteSubtasks=true", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	for _, id := range []string{parent.ID, child.ID, other.ID} {
		assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/tasks/"+id, nil).Code)
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0d 0h 0m 5s", formatUptime(5*time.Second))
	assert.Equal(t, "1d 2h 3m 4s", formatUptime(26*time.Hour+3*time.Minute+4*time.Second))
}
