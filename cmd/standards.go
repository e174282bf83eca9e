package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/later/internal/standards"
)

func standardsCmd(a *app) *cobra.Command {
	var showRules bool
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "List the available standards and the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := standards.Builtin()
			if a.settings.RulesDir != "" {
				var err error
				if provider, err = standards.Read(a.settings.RulesDir); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVERSION\tNAME\tRULES")
			for _, std := range provider.Standards() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", std.ID, std.Version, std.Name, strings.Join(std.Rules, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nlatest: %s\n", provider.Latest())

			if showRules {
				fmt.Fprintln(cmd.OutOrStdout())
				w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, id := range standards.Registered() {
					rule, _ := standards.NewRule(id)
					fmt.Fprintf(w, "%s\t%s\t%s\n", id, rule.Severity(), rule.Description())
				}
				return w.Flush()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showRules, "rules", false, "Also list every registered rule")
	return cmd
}
