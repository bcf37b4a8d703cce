package esi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/domain"
)

func newESIStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/characters/1001/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"name": "Test Subject",
			"corporation_id": 98000001,
			"alliance_id": 99000001,
			"birthday": "2015-03-10T12:00:00Z",
			"security_status": -1.2
		}`)
	})
	mux.HandleFunc("/characters/1001/corporationhistory/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"corporation_id": 98000001, "record_id": 3, "start_date": "2024-01-01T00:00:00Z"},
			{"corporation_id": 98000777, "record_id": 2, "start_date": "2022-06-01T00:00:00Z"},
			{"corporation_id": 1000009, "record_id": 1, "start_date": "2015-03-10T12:00:00Z"}
		]`)
	})
	mux.HandleFunc("/corporations/98000001/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name": "Home Corp", "alliance_id": 99000001}`)
	})
	mux.HandleFunc("/corporations/98000777/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/corporations/1000009/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name": "Caldari Provisions"}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestFetchApplicant(t *testing.T) {
	ts := newESIStub(t)
	client := New(ts.URL)

	profile, err := client.FetchApplicant(context.Background(), 1001)
	require.NoError(t, err)

	assert.Equal(t, int64(1001), profile.CharacterID)
	assert.Equal(t, "Test Subject", profile.CharacterName)
	assert.Equal(t, "Home Corp", profile.CorporationName)
	assert.Equal(t, int64(99000001), profile.AllianceID)
	assert.InDelta(t, -1.2, profile.SecurityStatus, 1e-9)
	require.NotNil(t, profile.Birthday)
	assert.False(t, profile.FetchedAt.IsZero())
	assert.Equal(t, []string{"esi"}, profile.DataSources)

	require.Len(t, profile.CorpHistory, 3)
	current := profile.CorpHistory[0]
	assert.Equal(t, int64(98000001), current.CorporationID)
	assert.Nil(t, current.End, "current membership is open")
	assert.False(t, current.IsNPC)

	middle := profile.CorpHistory[1]
	require.NotNil(t, middle.End)
	assert.Equal(t, current.Start, *middle.End, "membership ends where the newer one starts")
	// Name resolution failure is tolerated.
	assert.Empty(t, middle.CorporationName)

	oldest := profile.CorpHistory[2]
	assert.True(t, oldest.IsNPC)
	assert.Equal(t, "Caldari Provisions", oldest.CorporationName)
}

func TestFetchApplicantNotFound(t *testing.T) {
	ts := newESIStub(t)
	client := New(ts.URL)

	_, err := client.FetchApplicant(context.Background(), 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, domain.ErrUpstreamUnavailable},
		{"esi error limit", 420, domain.ErrUpstreamUnavailable},
		{"server error", http.StatusInternalServerError, domain.ErrUpstreamUnavailable},
		{"missing", http.StatusNotFound, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			client := New(ts.URL)
			var out map[string]any
			err := client.get(context.Background(), "/characters/1/", &out)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
