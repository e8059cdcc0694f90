package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/refresh"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	var idx *schedbot.Index
	if c.Offline {
		begin := time.Now()
		res, err := refresh.Rebuild(deps.Ctx, deps.Mirror, deps.Extractor, deps.Logger)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", schedbot.ErrorMessage(err))
			return err
		}
		idx = res.Index
		fmt.Fprintf(deps.Stdout, "Indexed %d documents (%d failed) in %s\n",
			res.Index.Len(), res.Failed, time.Since(begin).Round(time.Millisecond))
	} else {
		svc := newService(deps, c.URL)
		run, err := svc.Refresh(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", schedbot.ErrorMessage(err))
			return err
		}
		idx = svc.Index()
		printRun(deps, run)
	}

	if c.Lookup != "" {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, schedbot.Lookup(idx, c.Kind, c.Lookup))
	}
	return nil
}

// printRun writes the counters of a refresh cycle.
func printRun(deps *Dependencies, run *schedbot.RefreshRun) {
	fmt.Fprintf(deps.Stdout, "Folders:    %d\n", run.Folders)
	fmt.Fprintf(deps.Stdout, "Downloaded: %d\n", run.Downloaded)
	fmt.Fprintf(deps.Stdout, "Skipped:    %d\n", run.Skipped)
	fmt.Fprintf(deps.Stdout, "Failed:     %d\n", run.SyncFailed)
	fmt.Fprintf(deps.Stdout, "Documents:  %d (%d failed to extract)\n", run.Documents, run.ExtractFailed)
	fmt.Fprintf(deps.Stdout, "Duration:   %s\n", run.Duration().Round(time.Millisecond))
	if run.Error != "" {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", run.Error)
	}
}
