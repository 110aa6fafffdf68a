package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

var (
	networkHeader = color.New(color.BgCyan, color.FgBlack)
	liveStyle     = color.New(color.FgGreen)
	missingStyle  = color.New(color.FgRed)
)

// DeploymentsRenderer renders the deployments recorded in artifacts
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// RenderDeploymentList renders one table per networks key
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		if result.NetworkKey != "" {
			fmt.Fprintf(r.out, "No deployments found for networks key %q\n", result.NetworkKey)
		} else {
			fmt.Fprintln(r.out, "No deployments found")
		}
		return nil
	}

	groups := make(map[string][]usecase.DeploymentEntry)
	for _, d := range result.Deployments {
		groups[d.NetworkKey] = append(groups[d.NetworkKey], d)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		label := fmt.Sprintf(" networks[%s] ", key)
		if result.Network != "" && key == result.NetworkKey {
			label = fmt.Sprintf(" %s (networks[%s]) ", result.Network, key)
		}
		fmt.Fprintln(r.out, networkHeader.Sprint(label))

		t := newTable("contract", "address", "transaction", "status")
		for _, d := range groups[key] {
			t.AppendRow([]any{d.ContractName, addressStyle.Sprint(d.Address), orDash(d.TransactionHash), deploymentStatus(d)})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	fmt.Fprintf(r.out, "\nTotal: %d", result.Summary.Total)
	if result.Summary.Missing > 0 {
		fmt.Fprint(r.out, missingStyle.Sprintf(" (%d missing)", result.Summary.Missing))
	}
	fmt.Fprintln(r.out)

	if len(result.Summary.Undeployed) > 0 {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Not deployed: %s", strings.Join(result.Summary.Undeployed, ", ")))
	}
	return nil
}

func deploymentStatus(d usecase.DeploymentEntry) string {
	switch d.Status {
	case usecase.DeploymentLive:
		if d.BlockNumber > 0 {
			return liveStyle.Sprintf("live (block %d)", d.BlockNumber)
		}
		return liveStyle.Sprint("live")
	case usecase.DeploymentMissing:
		return missingStyle.Sprintf("missing: %s", d.Reason)
	default:
		return faintStyle.Sprint(string(d.Status))
	}
}
