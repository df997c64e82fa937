//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"csv-renamer/internal/config"
	"csv-renamer/internal/handler"
	"csv-renamer/internal/middleware"
	"csv-renamer/internal/model"
	"csv-renamer/internal/router"
	"csv-renamer/internal/service"
	"csv-renamer/internal/storage"
)

// memoryRunStore keeps run history in memory so the HTTP surface can be
// exercised without PostgreSQL.
type memoryRunStore struct {
	mu   sync.Mutex
	runs []model.Run
}

func (m *memoryRunStore) Create(_ context.Context, run model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append([]model.Run{run}, m.runs...)
	return nil
}

func (m *memoryRunStore) List(_ context.Context, page int, limit int) ([]model.Run, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta := model.Meta{Page: page, Limit: limit, Total: len(m.runs)}
	start := (page - 1) * limit
	if start >= len(m.runs) {
		return []model.Run{}, meta, nil
	}
	end := start + limit
	if end > len(m.runs) {
		end = len(m.runs)
	}
	return m.runs[start:end], meta, nil
}

func (m *memoryRunStore) Get(_ context.Context, runID string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.ID == runID {
			return run, nil
		}
	}
	return model.Run{}, model.ErrRunNotFound
}

type memoryAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (m *memoryAuditStore) Log(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]model.AuditEntry{entry}, m.entries...)
	return nil
}

func (m *memoryAuditStore) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]model.AuditEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if query.Action != "" && entry.Action != query.Action {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, model.Meta{Page: 1, Limit: query.Limit, Total: len(matched)}, nil
}

func newAuthedServer(t *testing.T, store *storage.Storage) (*httptest.Server, string, string) {
	t.Helper()

	usersFile := filepath.Join(t.TempDir(), "users.json")
	authService, err := service.NewAuthService(usersFile, "test-secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	auditService := service.NewAuditService(&memoryAuditStore{})
	auditHandler := handler.NewAuditHandler(auditService)

	renameService := service.NewRenameService(store, &memoryRunStore{}, auditService, 100)
	renameHandler := handler.NewRenameHandler(renameService, 10*1024*1024)
	runsHandler := handler.NewRunsHandler(renameService)

	directoryService := service.NewDirectoryService(store)
	directoryHandler := handler.NewDirectoryHandler(directoryService)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		StorageRoot:      store.RootAbs(),
		JWTSecret:        "test-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		UsersFile:        usersFile,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		MaxCSVSize:       10 * 1024 * 1024,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, renameHandler, runsHandler, directoryHandler, auditHandler))

	loginPayload := map[string]string{"username": "admin", "password": "admin123"}
	body, err := json.Marshal(loginPayload)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Data.AccessToken)
	require.NotEmpty(t, parsed.Data.RefreshToken)

	return server, parsed.Data.AccessToken, parsed.Data.RefreshToken
}

func newAuthRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Request {
	t.Helper()

	var payloadReader *bytes.Reader
	if body == nil {
		payloadReader = bytes.NewReader([]byte{})
	} else {
		payloadReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, payloadReader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doAuthRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()

	req := newAuthRequest(t, method, url, nil, accessToken)
	return doRequest(t, req)
}

// doCSVUpload posts a multipart form with the mapping CSV in the "file"
// field plus the given extra fields.
func doCSVUpload(t *testing.T, url string, accessToken string, csvBody string, fields map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "mapping.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, csvBody)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return doRequest(t, req)
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	t.Cleanup(func() { _ = resp.Body.Close() })
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
