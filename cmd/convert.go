package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/starobs/core/multinight"
	"github.com/kilianp07/starobs/infra/instanceio"
)

var convertOpts struct {
	format string
	coefs  []float64
	rng    float64
}

var convertCmd = &cobra.Command{
	Use:   "convert <instance> <output.json>",
	Short: "Convert an instance to JSON, optionally adding flexible modes",
	Long: `Convert reads an instance and writes it as JSON.

With --coef, every observable gets one reduced mode per coefficient c, of
duration round(c*p) and proportional profit, followed by its full mode.
With --range, every duration between round(c*p) and p is added instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOpts.format, "format", "f", "", fmt.Sprintf("input format %v", instanceio.Formats))
	f.Float64SliceVar(&convertOpts.coefs, "coef", nil, "reduced mode coefficients in (0, 1)")
	f.Float64Var(&convertOpts.rng, "range", 0, "smallest duration coefficient of a mode range in (0, 1)")
	convertCmd.MarkFlagsMutuallyExclusive("coef", "range")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inst, err := instanceio.ReadFile(args[0], convertOpts.format)
	if err != nil {
		return err
	}
	for _, c := range append(append([]float64(nil), convertOpts.coefs...), convertOpts.rng) {
		if c < 0 || c >= 1 {
			return fmt.Errorf("coefficient %g outside (0, 1)", c)
		}
	}
	switch {
	case len(convertOpts.coefs) > 0:
		inst, err = multinight.ExpandModes(inst, convertOpts.coefs)
	case convertOpts.rng > 0:
		inst, err = multinight.ExpandRange(inst, convertOpts.rng)
	}
	if err != nil {
		return err
	}
	if err := instanceio.WriteFile(args[1], inst); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), inst.Summary())
	return nil
}
