package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/xray-pack/internal/domain/common"
	"github.com/altuslabsxyz/xray-pack/internal/output"
)

// ErrReported is returned once a failure has already been printed.
var ErrReported = errors.New("error already reported")

// handleCommandError prints err with its recovery hint and adjusts cobra's
// behavior. Stage failures never print usage.
func handleCommandError(cmd *cobra.Command, logger *output.Logger, err error) error {
	if err == nil {
		return nil
	}

	if common.ShouldSilenceUsage(err) {
		cmd.SilenceUsage = true
	}

	logger.Error("%s", err)
	if hint := common.GetRecoveryHint(err); hint != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nHint: %s\n", hint)
	}

	cmd.SilenceErrors = true
	return ErrReported
}
