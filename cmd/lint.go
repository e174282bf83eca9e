package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/later/formatter"
	"github.com/gnolang/later/internal"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/lint"
)

type lintOptions struct {
	lines       string
	standards   string
	ignoreRules string
	ignorePaths string
	jsonOutput  bool
	outPath     string
	cacheDir    string
}

func lintCmd(a *app) *cobra.Command {
	o := &lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Run the normal lint process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("please provide file or directory paths")
			}
			return a.runLint(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.lines, "lines", "", "Only report issues on these lines (e.g. 3-5,8-8)")
	f.StringVar(&o.standards, "standards", "", "Highest standards version to check")
	f.StringVar(&o.ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	f.StringVar(&o.ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	f.BoolVar(&o.jsonOutput, "json", false, "Output issues in JSON format")
	f.StringVarP(&o.outPath, "output", "o", "", "Output path (when using JSON)")
	f.StringVar(&o.cacheDir, "cache-dir", "", "Reuse results of unchanged files from this directory")
	return cmd
}

func (a *app) runLint(cmd *cobra.Command, o *lintOptions, paths []string) error {
	if o.lines != "" {
		if err := a.settings.SetLines(o.lines); err != nil {
			return err
		}
	}

	engine, err := lint.New(a.settings, lint.Options{
		Standards: o.standards,
		CacheDir:  o.cacheDir,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	for _, rule := range splitCSV(o.ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitCSV(o.ignorePaths) {
		engine.IgnorePath(path)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	issues, err := lint.ProcessFiles(ctx, a.logger, engine, paths, lint.ProcessFile)
	var fileErrs *lint.FileErrors
	if err != nil && !errors.As(err, &fileErrs) {
		return err
	}

	if perr := printIssues(cmd.OutOrStdout(), a.logger, issues, o.jsonOutput, o.outPath); perr != nil {
		return errors.Join(err, perr)
	}
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return errIssuesFound
	}
	return nil
}

func printIssues(w io.Writer, logger *zap.Logger, issues []tt.Issue, isJSON bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	if isJSON {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("error marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
			return fmt.Errorf("error writing JSON output file: %w", err)
		}
		return nil
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}

func splitCSV(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
