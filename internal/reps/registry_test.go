package reps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRPCServer(t *testing.T, responses map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action string `json:"action"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		resp, ok := responses[body.Action]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestRegistryRefreshBuildsSnapshotFromRPCResponses(t *testing.T) {
	srv := fakeRPCServer(t, map[string]any{
		"representatives_online": map[string]any{
			"representatives": map[string]any{
				"acct1": map[string]any{"weight": "600"},
				"acct2": map[string]any{"weight": "400"},
			},
		},
		"telemetry": map[string]any{
			"metrics": []any{
				map[string]any{"address": "acct1", "port": 7075, "node_id": "node1", "maker": "1", "major_version": "24", "minor_version": "0", "pre_release_version": ""},
			},
		},
		"confirmation_quorum": map[string]any{
			"quorum_delta": "500",
			"peer_details": []any{
				map[string]any{"ip": "[acct1]:7075"},
			},
		},
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	reg := NewRegistry(client, nil)
	reg.refresh(context.Background())

	snap := reg.Current()
	require.Len(t, snap.Reps, 2)
	assert.Equal(t, "1000", snap.TotalWeight.Dec())
	assert.Equal(t, uint64(500), snap.QuorumDelta())

	acct1 := snap.Reps["acct1"]
	assert.True(t, acct1.HasTelemetry)
	assert.Equal(t, "24.0", acct1.Version)
	assert.InDelta(t, 60.0, acct1.WeightPercent, 0.001)
}

func TestRegistryRefreshKeepsPreviousSnapshotWhenRepsOnlineFails(t *testing.T) {
	srv := fakeRPCServer(t, map[string]any{
		"telemetry":           map[string]any{},
		"confirmation_quorum": map[string]any{},
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	reg := NewRegistry(client, nil)

	before := reg.Current()
	reg.refresh(context.Background())
	after := reg.Current()

	assert.Same(t, before, after)
}

func TestRegistryRefreshToleratesTelemetryFailure(t *testing.T) {
	srv := fakeRPCServer(t, map[string]any{
		"representatives_online": map[string]any{
			"representatives": map[string]any{
				"acct1": map[string]any{"weight": "100"},
			},
		},
		"confirmation_quorum": map[string]any{
			"quorum_delta": "10",
		},
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	reg := NewRegistry(client, nil)
	reg.refresh(context.Background())

	snap := reg.Current()
	require.Len(t, snap.Reps, 1)
	assert.False(t, snap.Reps["acct1"].HasTelemetry)
}
