package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/kinnison/git-sync/cmd/ui"
	"github.com/kinnison/git-sync/pkg/transfer"
)

// writeReport prints one line per reference the run touched.
func writeReport(w io.Writer, res *transfer.Result, format string) error {
	if len(res.References) == 0 {
		fmt.Fprintln(w, ui.InfoMessage("no references to transfer"))
		return nil
	}
	if format == outputPlain {
		for _, o := range res.References {
			fmt.Fprintf(w, "%s %s %s %s\n", o.Status, o.Name, orDash(o.Old.String()), o.New)
		}
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Reference", "Status", "Old", "New", "Error")
	for _, o := range res.References {
		reason := ""
		if o.Err != nil {
			reason = o.Err.Error()
		}
		if e := table.Append(
			o.Name.String(),
			ui.FormatRefStatus(string(o.Status)),
			ui.Grey(ui.ShortHash(o.Old.String())),
			ui.ShortHash(o.New.String()),
			reason,
		); e != nil {
			return e
		}
	}
	return table.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
