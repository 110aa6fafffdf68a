package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
)

// PublishIPFS uploads the built dapp to the local IPFS node
type PublishIPFS struct {
	uploader IPFSUploader
	cfg      *config.RuntimeConfig
	progress ProgressSink
}

// NewPublishIPFS creates a new PublishIPFS use case
func NewPublishIPFS(uploader IPFSUploader, cfg *config.RuntimeConfig, progress ProgressSink) *PublishIPFS {
	return &PublishIPFS{
		uploader: uploader,
		cfg:      cfg,
		progress: progress,
	}
}

// PublishIPFSParams contains parameters for publishing
type PublishIPFSParams struct {
	// Dir defaults to the configured app directory
	Dir string
}

// PublishIPFSResult contains the added entries and where the root can be viewed
type PublishIPFSResult struct {
	Entries   []domain.IPFSEntry
	Root      domain.IPFSEntry
	LocalURL  string
	PublicURL string
}

// Run executes the use case
func (uc *PublishIPFS) Run(ctx context.Context, params PublishIPFSParams) (*PublishIPFSResult, error) {
	dir := params.Dir
	if dir == "" {
		dir = uc.cfg.IPFS.AppDir
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot publish %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot publish %s: not a directory", dir)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "uploading",
		Message: fmt.Sprintf("Adding %s to IPFS", dir),
		Spinner: true,
	})

	entries, err := uc.uploader.AddDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to IPFS: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("IPFS returned no entries for %s", dir)
	}

	// The root directory is reported last
	root := entries[len(entries)-1]

	return &PublishIPFSResult{
		Entries:   entries,
		Root:      root,
		LocalURL:  gatewayURL(uc.cfg.IPFS.GatewayURL, root.Hash),
		PublicURL: gatewayURL(uc.cfg.IPFS.PublicGatewayURL, root.Hash),
	}, nil
}

func gatewayURL(base, hash string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/ipfs/" + hash
}
