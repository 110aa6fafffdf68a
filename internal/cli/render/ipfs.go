package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/emerald/internal/usecase"
)

// IPFSRenderer renders IPFS uploads
type IPFSRenderer struct {
	out io.Writer
}

// NewIPFSRenderer creates a new IPFS renderer
func NewIPFSRenderer(out io.Writer) *IPFSRenderer {
	return &IPFSRenderer{out: out}
}

// RenderPublish prints every added entry followed by the gateway links
func (r *IPFSRenderer) RenderPublish(result *usecase.PublishIPFSResult) error {
	for _, e := range result.Entries {
		fmt.Fprintf(r.out, "added %s %s\n", addressStyle.Sprint(e.Hash), e.Name)
	}
	fmt.Fprintln(r.out)
	if result.LocalURL != "" {
		fmt.Fprintf(r.out, "Local:          %s\n", result.LocalURL)
	}
	if result.PublicURL != "" {
		fmt.Fprintf(r.out, "Public Gateway: %s\n", result.PublicURL)
	}
	return nil
}
