package interactive

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/trebuchet-org/emerald/internal/domain"
	"github.com/trebuchet-org/emerald/internal/domain/config"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// ConfirmerAdapter asks the user before an already deployed artifact is
// deployed again.
type ConfirmerAdapter struct {
	config *config.RuntimeConfig
	// confirm runs a yes/no prompt; promptui.ErrAbort means no
	confirm func(label string) error
}

// NewConfirmerAdapter creates a new confirmer adapter
func NewConfirmerAdapter(cfg *config.RuntimeConfig) *ConfirmerAdapter {
	return &ConfirmerAdapter{config: cfg, confirm: runPrompt}
}

// ConfirmRedeploy prompts whether the artifact at location is deployed again
func (c *ConfirmerAdapter) ConfirmRedeploy(ctx context.Context, location string, chainID uint64, existing *domain.DeploymentRecord) (bool, error) {
	// In non-interactive mode, we can't ask
	if c.config.NonInteractive {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	label := fmt.Sprintf("%s is already deployed on chain %d at %s. Deploy again",
		color.New(color.FgWhite, color.Bold).Sprint(location),
		chainID,
		color.CyanString(existing.Address),
	)

	err := c.confirm(label)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, fmt.Errorf("redeploy prompt cancelled: %w", context.Canceled)
	default:
		return false, fmt.Errorf("redeploy prompt failed: %w", err)
	}
}

func runPrompt(label string) error {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err
}

// Ensure the adapter implements the interface
var _ usecase.RedeployConfirmer = (*ConfirmerAdapter)(nil)
