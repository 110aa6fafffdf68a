package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList renders the configured networks as a table
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in emerald.toml [networks]")
		return nil
	}

	t := newTable("", "network", "chain id", "rpc url", "explorer")
	for _, n := range result.Networks {
		marker := " "
		name := n.Name
		if n.Name == result.Selected {
			marker = color.GreenString("▸")
			name = color.New(color.Bold).Sprint(n.Name)
		}

		id := chainID(n.ChainID)
		if n.Error != nil {
			id = color.RedString("unreachable: %v", n.Error)
		}
		t.AppendRow([]any{marker, name, id, n.RPCURL, orDash(n.ExplorerURL)})
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}
