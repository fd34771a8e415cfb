package processor

import (
	"context"
	"fmt"
	"text/tabwriter"

	"codeberg.org/snonux/treetranslate/internal/history"
)

// ShowHistory lists recorded runs, or the files of runID when it is set
func (p *Processor) ShowHistory(ctx context.Context, runID string) error {
	store, err := history.Open(p.historyPath())
	if err != nil {
		return err
	}
	defer store.Close()

	if runID != "" {
		return p.showRun(ctx, store, runID)
	}

	runs, err := store.List(ctx, p.flags.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No runs recorded yet")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tLANGUAGE\tPROVIDER\tFILES\tOK\tFAILED\tINPUT")
	for _, r := range runs {
		state := ""
		if r.Cancelled {
			state = " (cancelled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Language, r.Provider,
			r.Total, r.Succeeded, r.Failed, r.InputRoot, state)
	}
	return tw.Flush()
}

func (p *Processor) showRun(ctx context.Context, store *history.Store, runID string) error {
	files, err := store.Files(ctx, runID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files recorded for run %s", runID)
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tATTEMPTS\tERROR")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.RelPath, f.Status, f.Attempts, f.Error)
	}
	return tw.Flush()
}
