package cloudmanager

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
)

// AvailableLogOptions returns the service/name pairs an environment produces logs for.
func (s *Service) AvailableLogOptions(ctx context.Context, programID string, environmentID string) ([]domain.LogOption, error) {
	env, err := s.ResolveEnvironment(ctx, programID, environmentID)
	if err != nil {
		return nil, err
	}
	return env.AvailableLogOptions, nil
}

// ListLogs returns the log descriptors of an environment for the last days days.
func (s *Service) ListLogs(ctx context.Context, programID, environmentID, service, name string, days int) ([]domain.LogDownload, error) {
	env, err := s.ResolveEnvironment(ctx, programID, environmentID)
	if err != nil {
		return nil, err
	}
	link, ok := env.Links.Link(domain.RelLogs)
	if !ok {
		return nil, fmt.Errorf("environment %s has no logs link: %w", environmentID, domain.ErrNotFound)
	}
	doc, err := s.api.GetQuery(ctx, link.Href, url.Values{
		"service": {service},
		"name":    {name},
		"days":    {strconv.Itoa(days)},
	})
	if err != nil {
		return nil, fmt.Errorf("listing logs of environment %s: %w", environmentID, err)
	}
	var downloads []domain.LogDownload
	for _, d := range doc.Embedded("downloads") {
		desc, err := decodeLogDownload(d)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, desc)
	}
	return downloads, nil
}

// Redirect follows a download or tail link to the object URL it points at.
func (s *Service) Redirect(ctx context.Context, link hal.Link) (string, error) {
	doc, err := s.api.Get(ctx, link.Href)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", link.Href, domain.Reclassify(err, domain.ErrDownloadResolutionFailed))
	}
	redirect := doc.String("redirect")
	if redirect == "" {
		return "", fmt.Errorf("no redirect in response from %s: %w", link.Href, domain.ErrDownloadResolutionFailed)
	}
	return redirect, nil
}
