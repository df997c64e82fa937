//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"csv-renamer/internal/storage"
)

func TestDirectoryList(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	server, accessToken, _ := newAuthedServer(t, store)
	t.Cleanup(server.Close)

	require.NoError(t, os.MkdirAll(filepath.Join(store.RootAbs(), "invoices"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.RootAbs(), "readme.txt"), []byte("x"), 0o600))

	resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/directories?path=/", accessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Path    string `json:"path"`
			Entries []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"entries"`
		} `json:"data"`
	}
	decodeBody(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "/", body.Data.Path)
	require.Len(t, body.Data.Entries, 2)

	types := map[string]string{}
	for _, entry := range body.Data.Entries {
		types[entry.Name] = entry.Type
	}
	require.Equal(t, "directory", types["invoices"])
	require.Equal(t, "file", types["readme.txt"])

	t.Run("traversal is rejected", func(t *testing.T) {
		escape := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/directories?path=../outside", accessToken)
		t.Cleanup(func() { _ = escape.Body.Close() })
		require.Equal(t, http.StatusForbidden, escape.StatusCode)
	})
}

func TestAuditTrail(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	server, accessToken, _ := newAuthedServer(t, store)
	t.Cleanup(server.Close)

	require.NoError(t, os.MkdirAll(filepath.Join(store.RootAbs(), "batch"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.RootAbs(), "batch", "report.txt"), []byte("x"), 0o600))

	execResp := doCSVUpload(t, server.URL+"/api/v1/renames", accessToken, "old,new\nreport.txt,final.txt\n", map[string]string{
		"directory": "/batch",
	})
	t.Cleanup(func() { _ = execResp.Body.Close() })
	require.Equal(t, http.StatusOK, execResp.StatusCode)

	// Audit writes are asynchronous; poll briefly.
	var entries int
	require.Eventually(t, func() bool {
		resp := doAuthRequest(t, http.MethodGet, server.URL+"/api/v1/audit?action=rename.execute", accessToken)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}

		var body struct {
			Data struct {
				Items []struct {
					Action string `json:"action"`
					Status string `json:"status"`
				} `json:"items"`
			} `json:"data"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
			return false
		}
		entries = len(body.Data.Items)
		return entries > 0
	}, 2*time.Second, 50*time.Millisecond)

	require.Equal(t, 1, entries)
}
