package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/later/formatter"
	"github.com/gnolang/later/internal"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/lint"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Lint YAML files again whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			engine, err := lint.New(a.settings, lint.Options{Logger: a.logger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			engine.OnIssues(func(filename string, issues []tt.Issue) {
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: ok\n", filename)
					return
				}
				source, err := internal.ReadSourceCode(filename)
				if err != nil {
					a.logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
					return
				}
				fmt.Fprint(out, formatter.GenerateFormattedIssue(issues, source))
			})

			if err := engine.StartWatching(args...); err != nil {
				return err
			}
			defer engine.StopWatching()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("Watching for changes", zap.Strings("dirs", args))
			<-ctx.Done()
			return nil
		},
	}
}
