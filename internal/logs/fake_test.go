package logs_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
)

// fakeResolver returns a scripted listing per call and maps link hrefs to
// object URLs.
type fakeResolver struct {
	mu        sync.Mutex
	listings  [][]domain.LogDownload
	redirects map[string]string
	failures  map[string]error
	listCalls int
	days      []int
}

func (f *fakeResolver) ListLogs(_ context.Context, _, _, _, _ string, days int) ([]domain.LogDownload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, days)
	i := f.listCalls
	if i >= len(f.listings) {
		i = len(f.listings) - 1
	}
	f.listCalls++
	if i < 0 {
		return nil, nil
	}
	return f.listings[i], nil
}

func (f *fakeResolver) Redirect(_ context.Context, link hal.Link) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[link.Href]; ok {
		return "", err
	}
	target, ok := f.redirects[link.Href]
	if !ok {
		return "", fmt.Errorf("no redirect for %s: %w", link.Href, domain.ErrDownloadResolutionFailed)
	}
	return target, nil
}

func (f *fakeResolver) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func tailable(href string) domain.LogDownload {
	return domain.LogDownload{Service: "author", Name: "aemerror", Date: "2026-10-18", TailLink: hal.Link{Href: href}}
}
