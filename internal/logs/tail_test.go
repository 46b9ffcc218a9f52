package logs_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/logs"
)

// objectStore serves files with HEAD sizing and open-ended byte ranges.
type objectStore struct {
	mu        sync.Mutex
	files     map[string]string
	headSizes map[string]int
	getStatus map[string]int
	ranges    []string
}

func (s *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodHead {
		size := len(content)
		if override, ok := s.headSizes[r.URL.Path]; ok {
			size = override
		}
		w.Header().Set("Content-Length", strconv.Itoa(size))
		return
	}
	rng := r.Header.Get("Range")
	s.ranges = append(s.ranges, r.URL.Path+" "+rng)
	if code, ok := s.getStatus[r.URL.Path]; ok {
		w.WriteHeader(code)
		return
	}
	start, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"))
	if start >= len(content) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	body := content[start:]
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusPartialContent)
	w.Write([]byte(body))
}

func (s *objectStore) appendTo(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] += content
}

func (s *objectStore) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ranges...)
}

var target = logs.Target{ProgramID: "1", EnvironmentID: "20", Service: "author", Name: "aemerror"}

var (
	noon           = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	beforeMidnight = time.Date(2026, 10, 18, 23, 57, 0, 0, time.UTC)
)

// newTailer builds a Tailer with a fixed clock. onSleep is called for every
// backoff with the 1-based sleep count; returning false cancels the tail.
func newTailer(resolver logs.Resolver, srv *httptest.Server, now time.Time, onSleep func(n int) bool) (*logs.Tailer, *int) {
	sleeps := 0
	tailer := logs.NewTailer(resolver,
		logs.WithObjectClient(srv.Client()),
		logs.WithClock(func() time.Time { return now }),
		logs.WithSleep(func(ctx context.Context, _ time.Duration) error {
			sleeps++
			if !onSleep(sleeps) {
				return context.Canceled
			}
			return ctx.Err()
		}),
	)
	return tailer, &sleeps
}

func singleFile(srvURL string) *fakeResolver {
	return &fakeResolver{
		listings:  [][]domain.LogDownload{{tailable("/tail")}},
		redirects: map[string]string{"/tail": srvURL + "/day1"},
	}
}

func TestTail_PartialContentAdvancesOffsetByContentLength(t *testing.T) {
	store := &objectStore{
		files:     map[string]string{"/day1": strings.Repeat("a", 100)},
		headSizes: map[string]int{"/day1": 0},
	}
	srv := httptest.NewServer(store)
	defer srv.Close()
	resolver := singleFile(srv.URL)

	tailer, sleeps := newTailer(resolver, srv, noon, func(int) bool { return false })

	var sink bytes.Buffer
	err := tailer.Tail(context.Background(), target, &sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"/day1 bytes=0-", "/day1 bytes=100-"}, store.requested())
	assert.Equal(t, strings.Repeat("a", 100), sink.String())
	assert.Equal(t, 1, *sleeps)
	assert.Equal(t, []int{0}, resolver.days)
}

func TestTail_RangeNotSatisfiableOutsideWindowRetriesSameOffset(t *testing.T) {
	store := &objectStore{files: map[string]string{"/day1": "abc"}}
	srv := httptest.NewServer(store)
	defer srv.Close()
	resolver := singleFile(srv.URL)

	tailer, sleeps := newTailer(resolver, srv, noon, func(n int) bool {
		if n == 1 {
			store.appendTo("/day1", "def")
			return true
		}
		return false
	})

	var sink bytes.Buffer
	err := tailer.Tail(context.Background(), target, &sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"/day1 bytes=3-", "/day1 bytes=3-", "/day1 bytes=6-"}, store.requested())
	assert.Equal(t, "def", sink.String())
	assert.Equal(t, 2, *sleeps)
	assert.Equal(t, 1, resolver.calls(), "no re-resolution outside the rollover window")
}

func TestTail_RolloverSwitchesToSmallerFile(t *testing.T) {
	store := &objectStore{files: map[string]string{
		"/day1": strings.Repeat("x", 50),
		"/day2": "new",
	}}
	srv := httptest.NewServer(store)
	defer srv.Close()
	resolver := &fakeResolver{
		listings: [][]domain.LogDownload{{tailable("/tail1")}, {tailable("/tail2")}},
		redirects: map[string]string{
			"/tail1": srv.URL + "/day1",
			"/tail2": srv.URL + "/day2",
		},
	}

	tailer, sleeps := newTailer(resolver, srv, beforeMidnight, func(n int) bool { return n < 2 })

	var sink bytes.Buffer
	err := tailer.Tail(context.Background(), target, &sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"/day1 bytes=50-", "/day2 bytes=3-"}, store.requested())
	assert.Equal(t, 2, resolver.calls())
	assert.Equal(t, 2, *sleeps)
	assert.Empty(t, sink.String())
}

func TestTail_RolloverCheckOnSameFileSleepsTwice(t *testing.T) {
	store := &objectStore{files: map[string]string{"/day1": strings.Repeat("x", 10)}}
	srv := httptest.NewServer(store)
	defer srv.Close()
	resolver := singleFile(srv.URL)

	tailer, sleeps := newTailer(resolver, srv, beforeMidnight, func(n int) bool { return n < 2 })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, *sleeps)
	assert.Equal(t, 2, resolver.calls())
	assert.Equal(t, []string{"/day1 bytes=10-"}, store.requested())
}

func TestTail_NotFoundTerminates(t *testing.T) {
	store := &objectStore{
		files:     map[string]string{"/day1": "abc"},
		getStatus: map[string]int{"/day1": http.StatusNotFound},
	}
	srv := httptest.NewServer(store)
	defer srv.Close()

	tailer, _ := newTailer(singleFile(srv.URL), srv, noon, func(int) bool { return true })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrLogNotFound)
}

func TestTail_OtherStatusTerminates(t *testing.T) {
	store := &objectStore{
		files:     map[string]string{"/day1": "abc"},
		getStatus: map[string]int{"/day1": http.StatusForbidden},
	}
	srv := httptest.NewServer(store)
	defer srv.Close()

	tailer, _ := newTailer(singleFile(srv.URL), srv, noon, func(int) bool { return true })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrTailRequestFailed)
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}

func TestTail_NoTailableLog(t *testing.T) {
	srv := httptest.NewServer(&objectStore{files: map[string]string{}})
	defer srv.Close()

	empty := &fakeResolver{}
	tailer, _ := newTailer(empty, srv, noon, func(int) bool { return true })
	assert.ErrorIs(t, tailer.Tail(context.Background(), target, &bytes.Buffer{}), domain.ErrNoTailableLog)

	noTail := &fakeResolver{listings: [][]domain.LogDownload{{{Service: "author", Name: "aemerror"}}}}
	tailer, _ = newTailer(noTail, srv, noon, func(int) bool { return true })
	assert.ErrorIs(t, tailer.Tail(context.Background(), target, &bytes.Buffer{}), domain.ErrNoTailableLog)
}

func TestTail_TailLinkWithoutRedirect(t *testing.T) {
	srv := httptest.NewServer(&objectStore{files: map[string]string{}})
	defer srv.Close()

	resolver := &fakeResolver{listings: [][]domain.LogDownload{{tailable("/tail")}}}
	tailer, _ := newTailer(resolver, srv, noon, func(int) bool { return true })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrNoTailableLog)
	assert.NotErrorIs(t, err, domain.ErrDownloadResolutionFailed)
}

func TestTail_TailLinkRequestFailure(t *testing.T) {
	srv := httptest.NewServer(&objectStore{files: map[string]string{}})
	defer srv.Close()

	resolver := &fakeResolver{
		listings: [][]domain.LogDownload{{tailable("/tail")}},
		failures: map[string]error{"/tail": &domain.RequestError{
			Method:     http.MethodGet,
			URL:        "/tail",
			StatusCode: http.StatusBadGateway,
			Err:        domain.ErrDownloadResolutionFailed,
		}},
	}
	tailer, _ := newTailer(resolver, srv, noon, func(int) bool { return true })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrTailRequestFailed)
	assert.NotErrorIs(t, err, domain.ErrDownloadResolutionFailed)
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
}

func TestTail_TailLinkUnauthorizedPassesThrough(t *testing.T) {
	srv := httptest.NewServer(&objectStore{files: map[string]string{}})
	defer srv.Close()

	resolver := &fakeResolver{
		listings: [][]domain.LogDownload{{tailable("/tail")}},
		failures: map[string]error{"/tail": &domain.RequestError{StatusCode: http.StatusUnauthorized, Err: domain.ErrUnauthorized}},
	}
	tailer, _ := newTailer(resolver, srv, noon, func(int) bool { return true })

	err := tailer.Tail(context.Background(), target, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTail_CancelledContext(t *testing.T) {
	store := &objectStore{files: map[string]string{"/day1": "abc"}}
	srv := httptest.NewServer(store)
	defer srv.Close()

	tailer, _ := newTailer(singleFile(srv.URL), srv, noon, func(int) bool { return true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tailer.Tail(ctx, target, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.requested())
}

func TestInRolloverWindow(t *testing.T) {
	window := logs.DefaultRolloverWindow
	tests := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 10, 18, 0, 4, 59, 0, time.UTC), true},
		{time.Date(2026, 10, 18, 0, 6, 0, 0, time.UTC), false},
		{time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 10, 18, 23, 54, 0, 0, time.UTC), false},
		{time.Date(2026, 10, 18, 23, 56, 0, 0, time.UTC), true},
		{time.Date(2026, 10, 19, 1, 58, 0, 0, time.FixedZone("CEST", 2*3600)), true},
	}
	for _, tt := range tests {
		t.Run(tt.at.Format(time.RFC3339), func(t *testing.T) {
			assert.Equal(t, tt.want, logs.InRolloverWindow(tt.at, window))
		})
	}
}
