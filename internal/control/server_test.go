package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct{ n int }

func (f *fakeStats) Stats() map[string]interface{} {
	return map[string]interface{}{"goroutines": f.n}
}

func TestStatsEndpoint(t *testing.T) {
	s, err := New(&fakeStats{n: 3}, func() {}, 16)
	require.NoError(t, err)

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	ldbStats, ok := got["ldb"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), ldbStats["goroutines"])
	assert.Contains(t, got, "process")
}

func TestResetEndpointInvokesCallback(t *testing.T) {
	called := false
	s, err := New(&fakeStats{}, func() { called = true }, 16)
	require.NoError(t, err)

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, called)
}

func TestRecentEndpointReturnsPushedEntries(t *testing.T) {
	s, err := New(&fakeStats{}, func() {}, 16)
	require.NoError(t, err)
	s.PushRecent(1, map[string]int{"tag": 1})
	s.PushRecent(2, map[string]int{"tag": 2})

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/recent")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got, 2)
}

func TestStopRejectsFurtherRequests(t *testing.T) {
	s, err := New(&fakeStats{}, func() {}, 16)
	require.NoError(t, err)
	s.Stop()

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
