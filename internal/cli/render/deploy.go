package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// DeployRenderer renders the summary of a deployment run
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// RenderSummary prints one row per artifact the run handled
func (r *DeployRenderer) RenderSummary(network string, result *usecase.DeployContractsResult) error {
	if len(result.Deployed) == 0 && len(result.Skipped) == 0 {
		fmt.Fprintln(r.out, "No artifacts deployed")
		return nil
	}

	fmt.Fprintf(r.out, "Deployed to %s (chain %d, networks key %q)\n\n", network, result.ChainID, result.NetworkKey)

	t := newTable("contract", "state", "address", "transaction", "block", "gas")
	for _, d := range result.Deployed {
		t.AppendRow([]any{
			contractLabel(d),
			title(string(d.State)),
			addressStyle.Sprint(d.Address),
			d.TransactionHash,
			d.BlockNumber,
			d.GasUsed,
		})
	}
	for _, location := range result.Skipped {
		t.AppendRow([]any{
			relativePath(location),
			faintStyle.Sprint(title(string(domain.StateSkipped))),
			faintStyle.Sprint("-"),
			faintStyle.Sprint("-"),
			"",
			"",
		})
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}

func contractLabel(o domain.ArtifactOutcome) string {
	if o.ContractName != "" {
		return o.ContractName
	}
	return relativePath(o.Location)
}
