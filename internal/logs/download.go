package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
	"github.com/waabox/cmdeck/internal/logging"
)

// DownloadRequest selects the logs to download.
type DownloadRequest struct {
	Target
	Days      int
	OutputDir string
}

// DownloadResult describes one downloaded log part.
// Index is -1 for descriptors with a single part.
type DownloadResult struct {
	Service string
	Name    string
	Date    string
	Index   int
	Path    string
	Source  string
}

// Downloader fetches gzipped log files and writes them decompressed.
type Downloader struct {
	resolver Resolver
	client   *http.Client
	logger   *log.Logger
}

// NewDownloader creates a Downloader. A nil client uses a default one.
func NewDownloader(resolver Resolver, client *http.Client) *Downloader {
	if client == nil {
		client = newObjectClient()
	}
	return &Downloader{
		resolver: resolver,
		client:   client,
		logger:   logging.New("download"),
	}
}

type part struct {
	desc  domain.LogDownload
	link  hal.Link
	index int
}

// DownloadAll downloads every part of every log listed for req concurrently.
// It returns one result per part, in listing order. A part whose link cannot
// be resolved fails the whole call; a stream that ends early is kept as far
// as it got.
func (d *Downloader) DownloadAll(ctx context.Context, req DownloadRequest) ([]DownloadResult, error) {
	downloads, err := d.resolver.ListLogs(ctx, req.ProgramID, req.EnvironmentID, req.Service, req.Name, req.Days)
	if err != nil {
		return nil, err
	}

	var parts []part
	for _, desc := range downloads {
		switch len(desc.DownloadLinks) {
		case 0:
		case 1:
			parts = append(parts, part{desc: desc, link: desc.DownloadLinks[0], index: -1})
		default:
			for i, link := range desc.DownloadLinks {
				parts = append(parts, part{desc: desc, link: link, index: i})
			}
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	results := make([]DownloadResult, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			result, err := d.download(gctx, req, p)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Downloader) download(ctx context.Context, req DownloadRequest, p part) (DownloadResult, error) {
	source, err := d.resolver.Redirect(ctx, p.link)
	if err != nil {
		return DownloadResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("creating request: %w", err)
	}
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("fetching %s: %w", p.link.Href, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return DownloadResult{}, &domain.RequestError{
			Method:     http.MethodGet,
			URL:        source,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        domain.ErrDownloadResolutionFailed,
		}
	}

	path := filepath.Join(req.OutputDir, FileName(req.EnvironmentID, p.desc, p.index))
	f, err := os.Create(path)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := decompress(f, resp.Body); err != nil {
		f.Close()
		return DownloadResult{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return DownloadResult{}, fmt.Errorf("closing %s: %w", path, err)
	}
	d.logger.Info("downloaded log", "path", path)

	return DownloadResult{
		Service: p.desc.Service,
		Name:    p.desc.Name,
		Date:    p.desc.Date,
		Index:   p.index,
		Path:    path,
		Source:  source,
	}, nil
}

// decompress gunzips r into w. A stream cut short by the server is not an error.
func decompress(w io.Writer, r io.Reader) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		if truncated(err) {
			return nil
		}
		return fmt.Errorf("%w: %w", domain.ErrDecompressionFailed, err)
	}
	defer zr.Close()
	if _, err := io.Copy(w, zr); err != nil && !truncated(err) {
		return fmt.Errorf("%w: %w", domain.ErrDecompressionFailed, err)
	}
	return nil
}

func truncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// FileName returns the local file name of a log part. index < 0 means the
// descriptor has a single part.
func FileName(environmentID string, desc domain.LogDownload, index int) string {
	name := fmt.Sprintf("%s-%s-%s-%s", environmentID, desc.Service, desc.Name, desc.Date)
	if index >= 0 {
		name = fmt.Sprintf("%s-%d", name, index)
	}
	return name + ".log"
}
