package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/later/internal/config"
)

// initCmd: later init
func initCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Initialize a new settings file",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfgFile); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", a.cfgFile)
			}
			if err := config.WriteDefault(a.cfgFile); err != nil {
				return fmt.Errorf("error initializing settings file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings file created/updated: %s\n", a.cfgFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}
