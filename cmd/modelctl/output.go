package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"modelhub/internal/provider"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.Bold)
	nameColor   = color.New(color.FgCyan)
	dimColor    = color.New(color.Faint)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
	replyColor  = color.New(color.FgWhite)
	promptColor = color.New(color.FgMagenta, color.Bold)
)

// colorWriter paints everything written through it
type colorWriter struct {
	io.Writer
	*color.Color
}

func (c *colorWriter) Write(p []byte) (n int, err error) {
	c.Color.Fprint(c.Writer, string(p))
	return len(p), nil
}

func statusColor(status provider.ListStatus) *color.Color {
	switch status {
	case provider.StatusOK:
		return okColor
	case provider.StatusFailed:
		return errorColor
	default:
		return warnColor
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printModels(w io.Writer, models []provider.ModelInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "NAME\tLABEL\tMAX TOKENS")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", nameColor.Sprint(m.Name), m.Label, m.MaxTokenAllowed)
	}
	tw.Flush()
}
