package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/starobs/app"
	"github.com/kilianp07/starobs/core/runlog"
)

var runsOpts struct {
	algorithm string
	instance  string
	since     time.Duration
	limit     int
	json      bool
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded solver runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsOpts.algorithm, "algorithm", "", "only runs of this algorithm")
	f.StringVar(&runsOpts.instance, "instance", "", "only runs on this instance")
	f.DurationVar(&runsOpts.since, "since", 0, "only runs started within this duration")
	f.IntVarP(&runsOpts.limit, "limit", "n", 20, "number of most recent runs, 0 for all")
	f.BoolVar(&runsOpts.json, "json", false, "print JSON lines")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	q := runlog.Query{Algorithm: runsOpts.algorithm, Instance: runsOpts.instance, Limit: runsOpts.limit}
	if runsOpts.since > 0 {
		q.Start = time.Now().Add(-runsOpts.since)
	}
	recs, err := svc.Runs(ctx, q)
	if err != nil {
		return err
	}
	if runsOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tALGORITHM\tINSTANCE\tPROFIT\tBOUND\tGAP\tELAPSED\tSTATUS")
	for _, r := range recs {
		status := "ok"
		switch {
		case r.Error != "":
			status = "error: " + r.Error
		case r.Interrupted:
			status = "interrupted"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%g\t%.2f%%\t%.1fms\t%s\n",
			r.RunID, r.Timestamp.Format(time.RFC3339), r.Algorithm, r.Instance,
			r.Profit, r.Bound, 100*r.Gap(), r.ElapsedMS, status)
	}
	return tw.Flush()
}
