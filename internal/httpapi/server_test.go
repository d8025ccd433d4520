package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanovote/votewatch/internal/broadcast"
	"github.com/nanovote/votewatch/internal/cache"
	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/reps"
)

func newTestServer(t *testing.T) (http.Handler, *election.Store) {
	t.Helper()
	c, err := cache.NewLRU(16)
	require.NoError(t, err)
	store := election.NewStore(c)
	registry := reps.NewRegistry(reps.NewClient("http://localhost", "", ""), nil)
	detail := broadcast.NewDetailSource(store, registry, "")
	hub := broadcast.NewHub(nil)
	return NewServer(store, detail, hub), store
}

func TestHandleRawReturnsNotFoundMessageForUnknownHash(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/raw/missing", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No election data found", body["error"])
}

func TestHandleRawReturnsStoredRecord(t *testing.T) {
	srv, store := newTestServer(t)

	delta := map[string]*election.Record{"hash1": election.NewRecord("hash1", 100)}
	_, err := store.MergeDelta(context.Background(), delta)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/raw/hash1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got election.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "hash1", got.Hash)
}

func TestHandleElectionDetailsJSONReturns404ForUnknownHash(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/election_details/missing", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleIndexServesHTML(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}
