//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"csv-renamer/internal/storage"
)

func TestAuthFlow(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	server, accessToken, refreshToken := newAuthedServer(t, store)
	t.Cleanup(server.Close)

	t.Run("me returns the logged-in user", func(t *testing.T) {
		resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/auth/me", accessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"data"`
		}
		decodeBody(t, resp, &body)
		require.True(t, body.Success)
		require.Equal(t, "admin", body.Data.Username)
		require.Equal(t, "admin", body.Data.Role)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		payload, marshalErr := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
		require.NoError(t, marshalErr)

		resp, postErr := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
		require.NoError(t, postErr)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("protected routes reject missing tokens", func(t *testing.T) {
		resp, getErr := http.Get(server.URL + "/api/v1/runs")
		require.NoError(t, getErr)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh rotates and invalidates the old token", func(t *testing.T) {
		payload, marshalErr := json.Marshal(map[string]string{"refresh_token": refreshToken})
		require.NoError(t, marshalErr)

		resp, postErr := http.Post(server.URL+"/api/v1/auth/refresh", "application/json", bytes.NewReader(payload))
		require.NoError(t, postErr)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				AccessToken string `json:"access_token"`
			} `json:"data"`
		}
		decodeBody(t, resp, &body)
		require.True(t, body.Success)
		require.NotEmpty(t, body.Data.AccessToken)

		replay, replayErr := http.Post(server.URL+"/api/v1/auth/refresh", "application/json", bytes.NewReader(payload))
		require.NoError(t, replayErr)
		t.Cleanup(func() { _ = replay.Body.Close() })
		require.Equal(t, http.StatusUnauthorized, replay.StatusCode)
	})
}

func TestViewerCannotExecuteRenames(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	server, adminToken, _ := newAuthedServer(t, store)
	t.Cleanup(server.Close)

	registerPayload, err := json.Marshal(map[string]string{
		"username": "viewer1",
		"password": "s3cret!",
		"role":     "viewer",
	})
	require.NoError(t, err)

	registerResp := doRequest(t, newAuthRequest(t, http.MethodPost, server.URL+"/api/v1/auth/register", registerPayload, adminToken))
	t.Cleanup(func() { _ = registerResp.Body.Close() })
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	loginPayload, err := json.Marshal(map[string]string{"username": "viewer1", "password": "s3cret!"})
	require.NoError(t, err)
	loginResp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginPayload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var login struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	decodeBody(t, loginResp, &login)

	// A viewer can read runs but not execute a batch.
	listResp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/runs", login.Data.AccessToken)
	t.Cleanup(func() { _ = listResp.Body.Close() })
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	execResp := doCSVUpload(t, server.URL+"/api/v1/renames", login.Data.AccessToken, "old,new\na.txt,b.txt\n", map[string]string{
		"directory": "/",
	})
	t.Cleanup(func() { _ = execResp.Body.Close() })
	require.Equal(t, http.StatusForbidden, execResp.StatusCode)

	// And the audit trail stays admin-only.
	auditResp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/audit", login.Data.AccessToken)
	t.Cleanup(func() { _ = auditResp.Body.Close() })
	require.Equal(t, http.StatusForbidden, auditResp.StatusCode)
}
