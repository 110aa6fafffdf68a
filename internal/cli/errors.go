package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/trebuchet-org/emerald/internal/domain"
)

// PrintError writes a command failure to w. A failed deployment prints the
// artifact it stopped at on its own line, followed by the failed step, the
// state it failed from and the underlying error.
func PrintError(w io.Writer, err error) {
	var deployErr *domain.DeployError
	if errors.As(err, &deployErr) {
		fmt.Fprintln(w, deployErr.Location)
		fmt.Fprintf(w, "Error (%s while %s): %v\n", deployErr.Kind, deployErr.From, deployErr.Err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
