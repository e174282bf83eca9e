package cmd

import (
	"context"
	"errors"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/later/internal/fixer"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/lint"
)

func fixCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		lines  string
	)
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Automatically fix issues that carry a suggestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("please provide file or directory paths")
			}
			if lines != "" {
				if err := a.settings.SetLines(lines); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			engine, err := lint.New(a.settings, lint.Options{Logger: a.logger})
			if err != nil {
				return err
			}

			fix := fixer.New(dryRun, cmd.OutOrStdout())
			return runAutoFix(ctx, a.logger, engine, fix, args)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	cmd.Flags().StringVar(&lines, "lines", "", "Only fix issues on these lines (e.g. 3-5,8-8)")
	return cmd
}

func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, fix *fixer.Fixer, paths []string) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	var fileErrs *lint.FileErrors
	if err != nil && !errors.As(err, &fileErrs) {
		return err
	}

	byFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	files := make([]string, 0, len(byFile))
	for filename := range byFile {
		files = append(files, filename)
	}
	sort.Strings(files)

	failed := err
	for _, filename := range files {
		applied, err := fix.Fix(filename, byFile[filename])
		if err != nil {
			logger.Error("error fixing issues", zap.String("path", filename), zap.Error(err))
			failed = errors.Join(failed, err)
			continue
		}
		logger.Debug("Fixed file", zap.String("path", filename), zap.Int("applied", applied))
	}
	return failed
}
