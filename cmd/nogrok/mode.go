package main

import (
	"fmt"

	"github.com/nao1215/nogrok/internal/model"
	"github.com/nao1215/nogrok/internal/store"
	"github.com/spf13/cobra"
)

// NewModeCmd creates the mode command.
func NewModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "mode [hide|keep|gray]",
		Short:     "Show or set the persisted treatment mode",
		ValidArgs: []string{"hide", "keep", "gray"},
		Long: `Mode shows the treatment applied to target-domain results, or sets it.

  hide  the result is not displayed (default)
  gray  the result is dimmed and labelled
  keep  the result is left as is

The mode is stored in the state database and used by every later filter run.

Examples:
  nogrok mode
  nogrok mode gray`,
		Args: cobra.MaximumNArgs(1),
		RunE: runModeCmd,
	}
}

// runModeCmd executes the mode command.
func runModeCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	db, err := openStateDB(getDBDir(cmd), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		raw := store.GetString(ctx, db, store.KeyMode, model.DefaultMode.String())
		mode, err := model.ParseMode(raw)
		if err != nil {
			logger.Warn("ignoring persisted mode", "value", raw, "error", err)
			mode = model.DefaultMode
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", mode)
		return nil
	}

	mode, err := model.ParseMode(args[0])
	if err != nil {
		return err
	}
	if err := db.Set(ctx, map[string]string{store.KeyMode: mode.String()}); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mode set to %s\n", mode)
	return nil
}
