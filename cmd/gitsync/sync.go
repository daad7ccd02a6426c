package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinnison/git-sync/cmd/ui"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
	"github.com/kinnison/git-sync/pkg/transfer"
)

const (
	outputTable = "table"
	outputPlain = "plain"
)

// syncOptions holds the flags only the transfer command takes. The values
// that also exist as configuration keys reach the engine through
// config.Settings.
type syncOptions struct {
	initTarget bool
	refs       []string
	workers    int
	fullWalk   bool
	progress   bool
	output     string
}

func (a *app) runSync(ctx context.Context, sourceArg, targetArg string, opts *syncOptions) error {
	if opts.output != outputTable && opts.output != outputPlain {
		return fmt.Errorf("unknown output format %q (want %s or %s)", opts.output, outputTable, outputPlain)
	}

	sourcePath, e := scpath.NewRepositoryPath(sourceArg)
	if e != nil {
		return e
	}
	targetPath, e := scpath.NewRepositoryPath(targetArg)
	if e != nil {
		return e
	}

	source, e := sourcerepo.Open(sourcePath, a.settings.Backend)
	if e != nil {
		return fmt.Errorf("source: %w", e)
	}
	target, e := a.openTarget(source, targetPath, opts.initTarget)
	if e != nil {
		return fmt.Errorf("target: %w", e)
	}
	logger.Info("repositories opened",
		"source", source.String(), "source_backend", source.Backend,
		"target", target.String(), "target_backend", target.Backend)

	engineOpts := []transfer.Option{
		transfer.WithWorkers(a.settings.Workers),
		transfer.WithFullWalk(a.settings.FullWalk),
		transfer.WithRefPatterns(a.settings.Refs...),
		transfer.WithLogger(logger.Default),
	}
	var bar *progressReporter
	if opts.progress {
		bar = newProgressReporter(a.stderr)
		engineOpts = append(engineOpts, transfer.WithProgress(bar.Update))
	}

	res, runErr := transfer.Run(ctx, source, target, engineOpts...)
	if bar != nil {
		bar.Close()
	}

	if res.State != transfer.StateAborted {
		if e := writeReport(a.stdout, res, opts.output); e != nil {
			return e
		}
	}
	a.exitCode = exitCode(res, runErr)

	switch res.State {
	case transfer.StateSuccess:
		fmt.Fprintln(a.stdout, ui.SuccessMessage("sync complete", summary(res)))
	case transfer.StatePartialSuccess:
		fmt.Fprintln(a.stdout, ui.WarningMessage(
			fmt.Sprintf("sync incomplete: %d of %d references failed (%s)",
				len(res.Failed()), len(res.References), summary(res))))
	default:
		return fmt.Errorf("transfer aborted while %s: %w", res.AbortedIn, runErr)
	}
	return nil
}

// openTarget opens the target repository, creating it when allowed. A new
// target's HEAD follows the source's symbolic HEAD.
func (a *app) openTarget(source *sourcerepo.Repository, path scpath.RepositoryPath, create bool) (*sourcerepo.Repository, error) {
	target, e := sourcerepo.Open(path, a.settings.Backend)
	if e == nil || !create || !errors.Is(e, sourcerepo.ErrNotRepository) {
		return target, e
	}

	target, e = sourcerepo.Init(path, a.settings.Backend)
	if e != nil {
		return nil, e
	}
	logger.Info("target initialised", "path", path, "backend", target.Backend)

	head, ok, e := source.Head()
	if e != nil {
		logger.Warn("cannot read source HEAD, keeping default", "error", e)
		return target, nil
	}
	if ok {
		if e := target.SetHead(head); e != nil {
			return nil, e
		}
	}
	return target, nil
}

// exitCode maps a run's outcome to the process exit status.
func exitCode(res *transfer.Result, runErr error) int {
	if runErr != nil || res == nil {
		return exitFailure
	}
	switch res.State {
	case transfer.StateSuccess:
		return exitOK
	case transfer.StatePartialSuccess:
		return exitPartial
	default:
		return exitFailure
	}
}

func summary(res *transfer.Result) string {
	return fmt.Sprintf("%d objects transferred, %d references updated in %s",
		res.ObjectsTransferred, res.ReferencesUpdated, res.Duration.Round(time.Millisecond))
}
