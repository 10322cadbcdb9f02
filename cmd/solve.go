package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/starobs/app"
	"github.com/kilianp07/starobs/config"
	"github.com/kilianp07/starobs/infra/instanceio"
	"github.com/kilianp07/starobs/infra/logger"
	"github.com/kilianp07/starobs/pkg/export"
)

var solveOpts struct {
	format       string
	algorithm    string
	timeLimit    time.Duration
	certificate  string
	output       string
	outputFormat string
	table        bool
}

var solveCmd = &cobra.Command{
	Use:   "solve <instance>",
	Short: "Solve an instance and report the best schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveOpts.format, "format", "f", "", fmt.Sprintf("instance format %v", instanceio.Formats))
	f.StringVarP(&solveOpts.algorithm, "algorithm", "a", "", fmt.Sprintf("algorithm %v, overrides the configuration", config.Algorithms))
	f.DurationVarP(&solveOpts.timeLimit, "time-limit", "t", 0, "time limit, overrides the configuration")
	f.StringVar(&solveOpts.certificate, "certificate", "", "write the schedule certificate to this file")
	f.StringVarP(&solveOpts.output, "output", "o", "", "write a schedule report to this file")
	f.StringVar(&solveOpts.outputFormat, "output-format", "json", fmt.Sprintf("report format %v", export.Formats))
	f.BoolVar(&solveOpts.table, "table", false, "print the schedule")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if solveOpts.algorithm != "" {
		cfg.Solver.Algorithm = solveOpts.algorithm
	}
	if solveOpts.timeLimit > 0 {
		cfg.Solver.TimeLimitSeconds = solveOpts.timeLimit.Seconds()
	}
	if err := cfg.Solver.Validate(); err != nil {
		return err
	}

	inst, err := instanceio.ReadFile(args[0], solveOpts.format)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	out, err := svc.Solve(ctx, inst, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run:       %s\n", out.RunID)
	fmt.Fprintf(w, "algorithm: %s\n", out.Algorithm)
	fmt.Fprintf(w, "instance:  %s\n", out.Instance.Summary())
	fmt.Fprintf(w, "solution:  %s\n", out.Solution.Summary())
	if !math.IsInf(out.Bound, 1) {
		fmt.Fprintf(w, "bound:     %g\n", out.Bound)
	}
	fmt.Fprintf(w, "elapsed:   %s\n", out.Elapsed)
	if out.Interrupted {
		fmt.Fprintln(w, "interrupted before convergence")
	}
	if solveOpts.table {
		fmt.Fprint(w, out.Solution.Table())
	}

	if solveOpts.certificate != "" {
		if err := instanceio.WriteCertificateFile(solveOpts.certificate, out.Solution); err != nil {
			return err
		}
	}
	if solveOpts.output != "" {
		r := export.NewReport(out.Solution)
		r.RunID = out.RunID
		r.Algorithm = out.Algorithm
		r.Instance = filepath.Base(args[0])
		r.Bound = math.Min(out.Bound, float64(out.Instance.TotalProfit()))
		f, err := os.Create(solveOpts.output)
		if err != nil {
			return err
		}
		if err := export.Write(f, solveOpts.outputFormat, r); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}
