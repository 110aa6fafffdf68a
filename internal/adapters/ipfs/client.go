package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
	"golang.org/x/sync/errgroup"
)

// ClientAdapter talks to the HTTP API of an IPFS node
type ClientAdapter struct {
	log    *slog.Logger
	apiURL string
	http   *http.Client
}

// NewClientAdapter creates a new IPFS client adapter
func NewClientAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{
		log:    log.With("component", "IPFSClient"),
		apiURL: strings.TrimRight(cfg.IPFS.APIURL, "/"),
		http:   &http.Client{},
	}
}

// addEntry is one line of the /api/v0/add response stream
type addEntry struct {
	Name    string `json:"Name"`
	Hash    string `json:"Hash"`
	Size    string `json:"Size"`
	Message string `json:"Message"`
	Type    string `json:"Type"`
}

// apiError is the body of a failed API call
type apiError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

// AddDirectory adds dir recursively. Entries come back in the order the node
// reports them, which puts the directory itself last.
func (c *ClientAdapter) AddDirectory(ctx context.Context, dir string) ([]domain.IPFSEntry, error) {
	start := time.Now()
	endpoint := c.apiURL + "/api/v0/add?" + url.Values{
		"recursive": {"true"},
		"progress":  {"false"},
	}.Encode()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := writeTree(mw, dir)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
		// The request side reports why it stopped reading
		if errors.Is(err, io.ErrClosedPipe) {
			return nil
		}
		return err
	})

	var entries []domain.IPFSEntry
	g.Go(func() error {
		defer pr.Close()

		req, err := http.NewRequestWithContext(gctx, http.MethodPost, endpoint, pr)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("IPFS API unreachable at %s: %w", c.apiURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return decodeAPIError(resp)
		}

		entries, err = decodeAddResponse(resp.Body)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.Debug("added directory to IPFS", "dir", dir, "entries", len(entries), "duration", time.Since(start))
	return entries, nil
}

// writeTree writes dir and everything below it as multipart parts. Part names
// are slash separated and start with the directory's own name.
func writeTree(mw *multipart.Writer, dir string) error {
	dir = filepath.Clean(dir)
	base := filepath.Base(dir)

	return filepath.WalkDir(dir, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := path.Join(base, filepath.ToSlash(rel))

		if d.IsDir() {
			_, err := createPart(mw, name, "application/x-directory")
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		part, err := createPart(mw, name, "application/octet-stream")
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(part, f)
		return err
	})
}

func createPart(mw *multipart.Writer, name, contentType string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, url.QueryEscape(name)))
	h.Set("Content-Type", contentType)
	return mw.CreatePart(h)
}

// decodeAddResponse reads the newline delimited JSON objects of an add call
func decodeAddResponse(r io.Reader) ([]domain.IPFSEntry, error) {
	dec := json.NewDecoder(r)

	var entries []domain.IPFSEntry
	for {
		var e addEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse IPFS response: %w", err)
		}

		if e.Type == "error" {
			return nil, fmt.Errorf("IPFS add failed: %s", e.Message)
		}
		if e.Hash == "" {
			continue
		}
		entries = append(entries, domain.IPFSEntry{
			Name: e.Name,
			Hash: e.Hash,
			Size: e.Size,
		})
	}
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("IPFS API returned %s: %s", resp.Status, apiErr.Message)
	}
	return fmt.Errorf("IPFS API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
}

// Ensure the adapter implements the interface
var _ usecase.IPFSUploader = (*ClientAdapter)(nil)
