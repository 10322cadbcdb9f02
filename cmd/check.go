package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/starobs/infra/instanceio"
)

var checkFormat string

// errInfeasible makes the command exit with a failure status.
var errInfeasible = errors.New("certificate is not feasible")

var checkCmd = &cobra.Command{
	Use:   "check <instance> <certificate>",
	Short: "Verify a schedule certificate against an instance",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "", fmt.Sprintf("instance format %v", instanceio.Formats))
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	inst, err := instanceio.ReadFile(args[0], checkFormat)
	if err != nil {
		return err
	}
	res, err := instanceio.CheckCertificateFile(args[1], inst)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Feasible {
		return errInfeasible
	}
	return nil
}
