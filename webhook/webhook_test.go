package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/harvest/models"
)

func testReport() *models.RunReport {
	return &models.RunReport{
		ID:         "7f9c",
		URL:        "https://example.test/data",
		FinishedAt: time.Unix(1700000000, 0),
		Completed:  3,
		Artifacts:  []string{"a.csv", "b.csv", "c.csv"},
	}
}

func TestDeliver_Signed(t *testing.T) {
	var gotSig string
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		assert.Equal(t, "sha256="+Sign("s3cret", body), gotSig)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "s3cret", nil)
	err := n.Deliver(context.Background(), NewRunCompleted(testReport()))

	require.NoError(t, err)
	assert.NotEmpty(t, gotSig)
	assert.Equal(t, EventRunCompleted, got.Type)
	assert.Equal(t, "7f9c", got.RunID)
	assert.Equal(t, int64(1700000000), got.Timestamp)
	assert.Equal(t, 3, got.Data.Completed)
}

func TestDeliver_Unsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	assert.NoError(t, NewNotifier(srv.URL, "", nil).Deliver(context.Background(), NewRunCompleted(testReport())))
}

func TestSend_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "", nil)
	n.delays = []time.Duration{0, time.Millisecond, time.Millisecond}

	require.NoError(t, n.Send(context.Background(), NewRunCompleted(testReport())))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSend_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "", nil)
	n.delays = []time.Duration{0, time.Millisecond}

	err := n.Send(context.Background(), NewRunCompleted(testReport()))
	assert.ErrorContains(t, err, "status 500")
}

func TestSend_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := NewNotifier(srv.URL, "", nil)
	n.delays = []time.Duration{0, time.Hour}

	done := make(chan error, 1)
	go func() { done <- n.Send(ctx, NewRunCompleted(testReport())) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not return after cancel")
	}
}
