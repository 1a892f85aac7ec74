package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data interface{}) {
	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Code: code, Message: message, Data: raw})
}

func newFakeServer(t *testing.T) (*httptest.Server, *int32) {
	var chartHits int32
	mux := http.NewServeMux()
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-123"
	}

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "admin123" {
			writeEnvelope(w, http.StatusUnauthorized, 100004, "invalid token", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, successCode, "success", map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("/api/dashboard/elders", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeEnvelope(w, http.StatusUnauthorized, 100004, "Authorization header is required", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, successCode, "success", []Member{{ID: "m1", Name: "Grandma Rose", Relationship: "Elder"}})
	})
	mux.HandleFunc("/api/dashboard/chewing", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&chartHits, 1)
		if r.URL.Query().Get("range") == "yearly" {
			writeEnvelope(w, http.StatusBadRequest, 108002, "range must be one of daily, weekly, monthly", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, successCode, "success", Chewing{
			MemberID: r.URL.Query().Get("member_id"),
			Range:    r.URL.Query().Get("range"),
			Points:   []Point{{Date: "2024-03-09", FormattedDate: "Mar 09", Count: 130}},
			Stats:    Stats{Average: 130, Days: 1, Max: 130},
		})
	})
	mux.HandleFunc("/api/admin/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, successCode, "Data refreshed", map[string]interface{}{"removed": 3})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &chartHits
}

func TestClientLoginAndDashboard(t *testing.T) {
	srv, _ := newFakeServer(t)
	c := New(srv.URL+"/api", nil)

	_, err := c.Elders()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Equal(t, "Authorization header is required", apiErr.Message)

	require.NoError(t, c.Login("admin", "admin123"))
	assert.Equal(t, "tok-123", c.Token())

	elders, err := c.Elders()
	require.NoError(t, err)
	require.Len(t, elders, 1)
	assert.Equal(t, "Grandma Rose", elders[0].Name)

	chewing, err := c.Chewing("m1", "weekly")
	require.NoError(t, err)
	assert.Equal(t, "m1", chewing.MemberID)
	assert.Equal(t, "weekly", chewing.Range)
	assert.Equal(t, Stats{Average: 130, Days: 1, Max: 130}, chewing.Stats)

	_, err = c.Chewing("", "yearly")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 108002, apiErr.Code)

	assert.NoError(t, c.Refresh())
}

func TestClientLoginRejected(t *testing.T) {
	srv, _ := newFakeServer(t)
	c := New(srv.URL+"/api", nil)

	err := c.Login("admin", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Empty(t, c.Token())
}

func TestBenchmark(t *testing.T) {
	srv, hits := newFakeServer(t)
	c := New(srv.URL+"/api", nil)

	res := c.Benchmark(context.Background(), "/dashboard/chewing?range=daily", 4, 20)
	assert.Equal(t, 20, res.SuccessCount)
	assert.Zero(t, res.FailureCount)
	assert.Equal(t, 20, res.StatusCodes[http.StatusOK])
	assert.EqualValues(t, 20, atomic.LoadInt32(hits))
	assert.LessOrEqual(t, res.MinTime, res.MaxTime)

	bad := c.Benchmark(context.Background(), "/dashboard/chewing?range=yearly", 2, 3)
	assert.Equal(t, 3, bad.FailureCount)
	assert.Equal(t, 3, bad.StatusCodes[http.StatusBadRequest])

	var out bytes.Buffer
	bad.Print(&out)
	assert.Contains(t, out.String(), "GET /dashboard/chewing?range=yearly")
	assert.Contains(t, out.String(), "400: 3")
}
