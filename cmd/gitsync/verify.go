package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinnison/git-sync/cmd/ui"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/graph"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [path]",
		Short: "Re-hash every object reachable from a repository's references",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "."
			if len(args) == 1 {
				start = args[0]
			}
			path, e := scpath.NewRepositoryPath(start)
			if e != nil {
				return e
			}
			repo, e := sourcerepo.FindRepository(path, a.settings.Backend)
			if e != nil {
				return e
			}

			list, e := repo.Refs.List()
			if e != nil {
				return e
			}
			roots := make([]objects.ObjectHash, len(list))
			for i, r := range list {
				roots[i] = r.Target
			}

			report, e := graph.Check(cmd.Context(), repo.Objects, roots, logger.Default)
			if e != nil {
				return e
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Section(repo.String()))
			for _, id := range report.Missing {
				fmt.Fprintf(out, "  %s %s\n", ui.Red("missing"), id)
			}
			for _, id := range report.Corrupt {
				fmt.Fprintf(out, "  %s %s\n", ui.Red("corrupt"), id)
			}
			for _, id := range report.Malformed {
				fmt.Fprintf(out, "  %s %s\n", ui.Yellow("malformed"), id)
			}
			if !report.OK() {
				return fmt.Errorf("%d problems in %d objects", report.Problems(), report.Checked)
			}
			fmt.Fprintln(out, ui.SuccessMessage("repository ok",
				fmt.Sprintf("%d objects reachable from %d references", report.Checked, len(list))))
			return nil
		},
	}
}
