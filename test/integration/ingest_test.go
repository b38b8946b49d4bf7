//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/odessarp/dashboard/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_StoresLogAndOutboxEvent(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.PostLog(testutil.TestFiveMAPIKey, map[string]any{
		"server_id":   "main",
		"event_type":  "player_death",
		"player_name": "Ivan",
		"details":     map[string]any{"weapon": "WEAPON_PISTOL"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			ID        int64          `json:"id"`
			EventType string         `json:"event_type"`
			Details   map[string]any `json:"details"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &body)
	assert.True(t, body.Success)
	assert.Positive(t, body.Data.ID)
	assert.Equal(t, "WEAPON_PISTOL", body.Data.Details["weapon"])

	assert.Equal(t, 1, env.CountRows("logs"))
	assert.Equal(t, 1, env.CountRows("event_outbox"))
}

func TestIngest_RejectsBadKeyWithoutWriting(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.PostLog("wrong", map[string]any{"server_id": "main", "event_type": "join"})
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	resp = env.PostLog("", map[string]any{"server_id": "main"})
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	assert.Zero(t, env.CountRows("logs"))
}

func TestIngest_MissingFields(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.PostLog(testutil.TestFiveMAPIKey, map[string]any{"server_id": "main"})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)

	var body map[string]string
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "Missing required fields", body["error"])
	assert.Zero(t, env.CountRows("logs"))
}

func TestLogs_ViewerCanBrowse(t *testing.T) {
	env := testutil.NewTestEnv(t)
	for _, ev := range []string{"join", "leave", "join"} {
		resp := env.PostLog(testutil.TestFiveMAPIKey, map[string]any{"server_id": "main", "event_type": ev})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	token := env.Token(viewer(env))
	resp := env.Auth(http.MethodGet, "/api/logs?event_type=join", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Data []map[string]any `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &page)
	assert.Len(t, page.Data, 2)

	resp = env.Auth(http.MethodGet, "/api/logs/facets", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var facets struct {
		EventTypes []string `json:"event_types"`
	}
	testutil.DecodeJSON(t, resp, &facets)
	assert.ElementsMatch(t, []string{"join", "leave"}, facets.EventTypes)
}
