package twocaptcha

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const readyRecaptcha = `{"status":1,"request":{"gRecaptchaResponse":"xyz","token":"xyz"},` +
	`"cost":"0.00299","createTime":1700000000,"endTime":1700000020,"solveCount":1,"ip":"203.0.113.7"}`

const notReadyReply = `{"status":0,"request":"CAPCHA_NOT_READY"}`

// fakeService is a scripted stand-in for the remote service. Poll
// replies are consumed in order; the last one repeats.
type fakeService struct {
	mu sync.Mutex

	submitReply  string
	pollReplies  []string
	reportReply  string
	balanceReply string
	status       int

	submits []url.Values
	polls   []url.Values
	reports []url.Values
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	switch r.URL.Path {
	case "/in.php":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.submits = append(f.submits, r.PostForm)
		io.WriteString(w, f.submitReply)
	case "/res.php":
		q := r.URL.Query()
		switch q.Get("action") {
		case "get":
			f.polls = append(f.polls, q)
			reply := notReadyReply
			if n := len(f.pollReplies); n > 0 {
				reply = f.pollReplies[0]
				if n > 1 {
					f.pollReplies = f.pollReplies[1:]
				}
			}
			io.WriteString(w, reply)
		case "reportgood", "reportbad":
			f.reports = append(f.reports, q)
			io.WriteString(w, f.reportReply)
		case "getbalance":
			io.WriteString(w, f.balanceReply)
		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) counts() (submits, polls, reports int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits), len(f.polls), len(f.reports)
}

// waitRecorder replaces the client's sleep. It returns at once and
// records every requested duration.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
	// hook runs before returning, e.g. to cancel the caller's context.
	hook func(n int)
}

func (w *waitRecorder) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	n := len(w.waits)
	hook := w.hook
	w.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (w *waitRecorder) recorded() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

// newTestClient starts svc and returns a client pointed at it with the
// sleep replaced by a recorder.
func newTestClient(t *testing.T, svc *fakeService, cfg Config) (*Client, *waitRecorder) {
	t.Helper()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	cfg.BaseURL = srv.URL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := &waitRecorder{}
	c.wait = rec.wait
	return c, rec
}

func mustRecaptchaV2(t *testing.T) *RecaptchaV2 {
	t.Helper()
	task, err := NewRecaptchaV2Builder().
		WebsiteURL("https://example.com/login").
		WebsiteKey("6Le-wvkSAAAAAPBMRTvw0Q4Muexq9bi0DJwx_mJ-").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return task
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
