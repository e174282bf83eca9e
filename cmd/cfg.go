package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/later/internal/dict"
	"github.com/gnolang/later/internal/yamlutil"
)

func cfgCmd(a *app) *cobra.Command {
	var overlay string
	cmd := &cobra.Command{
		Use:   "config [key]",
		Short: "Print the effective settings as YAML",
		Long: `Prints the settings after the settings file, .env and LATER_* variables are applied.
A dotted key limits the output to one setting or section.
Example) later config --overlay team.yml rules.lines`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := a.settings.Tree()

			if overlay != "" {
				data, err := os.ReadFile(overlay)
				if err != nil {
					return err
				}
				extra, _ := yamlutil.Load(string(data), yamlutil.FailOpen, func(err error) {
					a.logger.Warn("Ignoring malformed overlay", zap.String("file", overlay), zap.Error(err))
				})
				mergeTree(tree, nil, extra)
			}

			var view any = tree
			if len(args) == 1 {
				value, ok := dict.Get(tree, strings.Split(args[0], "."))
				if !ok {
					return fmt.Errorf("unknown setting %q", args[0])
				}
				view = value
			}

			out, err := yaml.Marshal(view)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&overlay, "overlay", "", "YAML mapping merged over the settings before printing")
	return cmd
}

// mergeTree copies every leaf of src into tree under prefix.
func mergeTree(tree map[string]any, prefix []string, src map[string]any) {
	for key, value := range src {
		path := append(prefix[:len(prefix):len(prefix)], key)
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			mergeTree(tree, path, nested)
			continue
		}
		dict.AddBranch(tree, path, value)
	}
}
