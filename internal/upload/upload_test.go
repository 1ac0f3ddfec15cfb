package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const dumpA = `[{"index": 1, "Press": 60, "Squat": 140}]`
const dumpB = `[{"index": 2, "Press": 62.5, "Squat": 145}]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openState(t *testing.T) *StateDB {
	t.Helper()
	st, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func writeDump(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fakeSender hands out consecutive cycle indexes.
type fakeSender struct {
	next  int
	calls int
}

func (f *fakeSender) SendDump(_ context.Context, dump []byte) ([]int, error) {
	f.calls++
	f.next++
	return []int{f.next}, nil
}

// TestRunSkipsAlreadySent verifies a second run sends nothing new.
func TestRunSkipsAlreadySent(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "a.json", dumpA)
	writeDump(t, dir, "b.json", dumpB)
	writeDump(t, dir, "broken.json", `{`)
	st := openState(t)
	sender := &fakeSender{}

	stats, err := New(sender, st, dir, false, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 3 || stats.FilesUploaded != 2 || stats.FilesErrored != 1 {
		t.Errorf("first run stats = %+v", stats)
	}
	if len(stats.CyclesCreated) != 2 || stats.CyclesCreated[1] != 2 {
		t.Errorf("cycles created = %v", stats.CyclesCreated)
	}

	stats, err = New(sender, st, dir, false, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 0 || stats.FilesSkipped != 2 || sender.calls != 2 {
		t.Errorf("second run stats = %+v, calls = %d", stats, sender.calls)
	}
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "a.json", dumpA)

	stats, err := New(nil, openState(t), dir, true, discardLogger()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.EntriesSent != 1 || stats.FilesUploaded != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStateRoundTrip(t *testing.T) {
	st := openState(t)
	ctx := context.Background()
	hash, err := HashDump(strings.NewReader(dumpA))
	if err != nil {
		t.Fatal(err)
	}

	if sent, _, err := st.Sent(ctx, hash); err != nil || sent {
		t.Fatalf("Sent before mark = %v, %v", sent, err)
	}
	if err := st.MarkSent(ctx, hash, "a.json", []int{4, 5}); err != nil {
		t.Fatal(err)
	}
	sent, cycles, err := st.Sent(ctx, hash)
	if err != nil || !sent || len(cycles) != 2 || cycles[1] != 5 {
		t.Errorf("Sent = %v, %v, %v", sent, cycles, err)
	}
}

// TestClientRetries verifies 5xx replies are retried, the API key is sent
// and the created indexes are returned.
func TestClientRetries(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import" || r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("unexpected request %s key=%q", r.URL.Path, r.Header.Get("X-API-Key"))
		}
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"created":[7]}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	c.backoff = time.Millisecond
	created, err := c.SendDump(context.Background(), []byte(dumpA))
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0] != 7 || hits.Load() != 2 {
		t.Errorf("created = %v after %d hits", created, hits.Load())
	}
}

// TestClientRejected verifies a 4xx reply is not retried.
func TestClientRejected(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation failed: unknown lift \"Curl\""}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret")
	c.backoff = time.Millisecond
	_, err := c.SendDump(context.Background(), []byte(`[{"index":1,"Curl":20}]`))
	if err == nil || !strings.Contains(err.Error(), "Curl") {
		t.Errorf("err = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

// TestClientRetryOnlyWhenNothingStored verifies a dump is resent after a
// refused connection or a server 500, but not after a dropped connection or
// a gateway timeout, where the server may already have stored it.
func TestClientRetryOnlyWhenNothingStored(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(w http.ResponseWriter, hit int32)
		wantHits int32
		wantErr  bool
	}{
		{
			name: "server error then created",
			handler: func(w http.ResponseWriter, hit int32) {
				if hit == 1 {
					http.Error(w, `{"error":"persistence failure"}`, http.StatusInternalServerError)
					return
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"created":[1]}`))
			},
			wantHits: 2,
		},
		{
			name: "connection dropped",
			handler: func(http.ResponseWriter, int32) {
				panic(http.ErrAbortHandler)
			},
			wantHits: 1,
			wantErr:  true,
		},
		{
			name: "gateway timeout",
			handler: func(w http.ResponseWriter, _ int32) {
				http.Error(w, "upstream timed out", http.StatusGatewayTimeout)
			},
			wantHits: 1,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.handler(w, hits.Add(1))
			}))
			defer ts.Close()

			c := NewClient(ts.URL, "secret")
			c.backoff = time.Millisecond
			_, err := c.SendDump(context.Background(), []byte(dumpA))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if hits.Load() != tt.wantHits {
				t.Errorf("hits = %d, want %d", hits.Load(), tt.wantHits)
			}
		})
	}
}

// TestClientRetriesRefusedConnection verifies a server that cannot be
// reached is tried three times.
func TestClientRetriesRefusedConnection(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(url, "secret")
	c.backoff = time.Millisecond
	_, err := c.SendDump(context.Background(), []byte(dumpA))
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("err = %v, want retries exhausted", err)
	}
}
