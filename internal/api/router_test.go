package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upsert-monster/internal/jobs"
	"github.com/upsert-monster/internal/queue"
	"github.com/upsert-monster/internal/worker"
)

func setupTestServer(t *testing.T) (*httptest.Server, *queue.RedisQueue) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q := queue.NewRedisQueue(queue.RedisQueueOptions{Client: client, ScanLimit: 10})

	mux := http.NewServeMux()
	AddRoutes(mux, q, nil, nil)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, q
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCreateJobWithExplicitJobID(t *testing.T) {
	srv, q := setupTestServer(t)

	resp := postJSON(t, srv.URL+"/createJob",
		`{"jobId":"abc","videos":[{"id":"v1","channelId":"c1"},{"id":"v2","channelId":"c1"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		Key   string `json:"key"`
		Name  string `json:"name"`
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "upsertVideos-abc", created.Name)
	assert.Equal(t, "waiting", created.State)
	require.NotEmpty(t, created.Key)

	job, err := q.FindByExactKey(context.Background(), created.Key)
	require.NoError(t, err)
	assert.Equal(t, 0, job.Progress)
}

func TestCreateJobWithChannelAndDate(t *testing.T) {
	srv, q := setupTestServer(t)

	resp := postJSON(t, srv.URL+"/createJob",
		`{"channelId":"c1","date":"2024-01-01","videos":[{"id":"v1","channelId":"c1"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	job, err := q.Find(context.Background(), jobs.Locator{ChannelID: "c1", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "upsertVideos-c1-2024-01-01", job.Name)
}

func TestCreateJobValidation(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"no identity", `{"videos":[]}`},
		{"channel without date", `{"channelId":"c1","videos":[]}`},
		{"missing videos", `{"jobId":"abc"}`},
		{"invalid json", `{"jobId":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/createJob", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateJobRejectsGet(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := getJSON(t, srv.URL+"/createJob", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGetProgressByPrefixMatch(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := postJSON(t, srv.URL+"/createJob",
		`{"channelId":"c1","date":"2024-01-01","videos":[{"id":"v1","channelId":"c1"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A bare channel id resolves the composite name by prefix.
	var progress struct {
		Progress int `json:"progress"`
	}
	getResp := getJSON(t, srv.URL+"/getProgress?jobId=c1", &progress)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, 0, progress.Progress)

	getResp = getJSON(t, srv.URL+"/getProgress?channelId=c1&date=2024-01-01", &progress)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, 0, progress.Progress)
}

func TestGetProgressByExactKey(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := postJSON(t, srv.URL+"/createJob",
		`{"jobId":"abc","videos":[{"id":"v1","channelId":"c1"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	var progress struct {
		Progress int `json:"progress"`
	}
	getResp := getJSON(t, srv.URL+"/getProgress?jobId="+created.Key, &progress)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, 0, progress.Progress)
}

func TestGetProgressUnknownJobIsComplete(t *testing.T) {
	srv, _ := setupTestServer(t)

	var progress struct {
		Progress int `json:"progress"`
	}
	resp := getJSON(t, srv.URL+"/getProgress?jobId=never-created", &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, progress.Progress)
}

func TestGetProgressWithoutIdentity(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := getJSON(t, srv.URL+"/getProgress", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/getProgress?date=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitThenPollReaches100(t *testing.T) {
	srv, q := setupTestServer(t)

	pool := worker.NewPool(worker.PoolOptions{
		Queue:        q,
		Processor:    worker.NewUpsertProcessor(q, discardStore{}, nil),
		PollInterval: 10 * time.Millisecond,
	})
	pool.Start()
	defer pool.Stop()

	resp := postJSON(t, srv.URL+"/createJob",
		`{"jobId":"abc","videos":[{"id":"v1","channelId":"c1"},{"id":"v2","channelId":"c1"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		var progress struct {
			Progress int `json:"progress"`
		}
		r, err := http.Get(srv.URL + "/getProgress?jobId=abc")
		if err != nil {
			return false
		}
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&progress); err != nil {
			return false
		}
		// Every observed value is one of floor(i/n*100) or the final 100.
		assert.Contains(t, []int{0, 50, 100}, progress.Progress)
		return progress.Progress == 100
	}, 2*time.Second, 10*time.Millisecond)
}

type discardStore struct{}

func (discardStore) Upsert(context.Context, jobs.Video) error { return nil }

func TestRootBanner(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessTracksQueueConnection(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	SetRedisConnection(client)
	t.Cleanup(func() { SetRedisConnection(nil) })

	mux := http.NewServeMux()
	AddRoutes(mux, queue.NewRedisQueue(queue.RedisQueueOptions{Client: client}), nil, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var readiness struct {
		Status string `json:"status"`
		Queue  string `json:"queue"`
	}
	resp := getJSON(t, srv.URL+"/health/ready", &readiness)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", readiness.Status)
	assert.Equal(t, "connected", readiness.Queue)

	mr.Close()

	resp = getJSON(t, srv.URL+"/health/ready", &readiness)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not ready", readiness.Status)
	assert.Equal(t, "disconnected", readiness.Queue)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, path := range []string{"/health", "/health/live"} {
		var health struct {
			Status string `json:"status"`
		}
		resp := getJSON(t, srv.URL+path, &health)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, health.Status)
	}
}
