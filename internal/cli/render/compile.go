package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/trebuchet-org/emerald/internal/usecase"
)

// CompileRenderer renders compilation results
type CompileRenderer struct {
	out io.Writer
}

// NewCompileRenderer creates a new compile renderer
func NewCompileRenderer(out io.Writer) *CompileRenderer {
	return &CompileRenderer{out: out}
}

// RenderCompile lists the written artifacts
func (r *CompileRenderer) RenderCompile(result *usecase.CompileContractsResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Compiled %d source file(s) into %d artifact(s)", len(result.Sources), len(result.Artifacts))))
	if len(result.Abstract) > 0 {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Skipped without bytecode: %s", strings.Join(result.Abstract, ", ")))
	}
	if len(result.Artifacts) == 0 {
		return nil
	}

	t := newTable("contract", "source", "artifact")
	for _, a := range result.Artifacts {
		t.AppendRow([]any{a.ContractName, a.SourcePath, faintStyle.Sprint(relativePath(a.Location))})
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, t.Render())
	return nil
}
