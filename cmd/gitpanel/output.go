// cmd/gitpanel/output.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gitpanel/shared/types"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// render prints v as indented JSON under --json, otherwise runs human.
func (a *app) render(w io.Writer, v any, human func(io.Writer)) error {
	if a.opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(w)
	return nil
}

func colorSymbol(symbol string) string {
	switch symbol {
	case "?":
		return blue(symbol)
	case "A":
		return green(symbol)
	case "M":
		return yellow(symbol)
	case "D":
		return red(symbol)
	case "":
		return " "
	default:
		return cyan(symbol)
	}
}

func printStatus(w io.Writer, resp *types.StatusResponse) {
	if len(resp.Files) == 0 {
		fmt.Fprintln(w, resp.Message)
		return
	}
	for _, f := range resp.Files {
		fmt.Fprintf(w, "\t%s %s\n", colorSymbol(f.Status), f.Path)
	}
}

func printAdd(w io.Writer, resp *types.AddResponse) {
	if len(resp.AddedFiles) == 0 {
		fmt.Fprintln(w, resp.Message)
		return
	}
	fmt.Fprintf(w, "Staged %d file(s):\n", len(resp.AddedFiles))
	for _, p := range resp.AddedFiles {
		fmt.Fprintf(w, "\t%s %s\n", green("+"), p)
	}
}

func printCommit(w io.Writer, resp *types.CommitResponse) {
	if !resp.Committed() {
		fmt.Fprintln(w, resp.Message)
		return
	}
	id := resp.ID
	if len(id) > 7 {
		id = id[:7]
	}
	fmt.Fprintf(w, "[%s] %s\n", yellow(id), resp.Message)
	if resp.Author != nil {
		fmt.Fprintf(w, "Author: %s <%s>\n", resp.Author.Name, resp.Author.Email)
	}
}

func printHistory(w io.Writer, resp *types.HistoryResponse) {
	if len(resp.Commits) == 0 {
		fmt.Fprintln(w, resp.Message)
		return
	}
	for _, c := range resp.Commits {
		fmt.Fprintf(w, "%s %s %s %s\n", yellow(c.ID), faint(c.Date), cyan(c.Author), c.Message)
	}
}
