package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	headerStyle  = color.New(color.Bold, color.FgHiWhite)
	addressStyle = color.New(color.FgCyan)
	faintStyle   = color.New(color.Faint)
	titleCaser   = cases.Title(language.English)
)

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	msg := strings.TrimSpace(message)
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// newTable creates a borderless table in the style of the list commands
func newTable(header ...string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}
	t.Style().Format.Header = text.FormatDefault

	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = headerStyle.Sprint(strings.ToUpper(h))
	}
	t.AppendHeader(row)
	return t
}

// relativePath returns path relative to the working directory when possible
func relativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// title title-cases a lower case word such as a state name
func title(s string) string {
	return titleCaser.String(s)
}

func orDash(s string) string {
	if s == "" {
		return faintStyle.Sprint("-")
	}
	return s
}

func chainID(id uint64) string {
	if id == 0 {
		return faintStyle.Sprint("?")
	}
	return fmt.Sprintf("%d", id)
}
