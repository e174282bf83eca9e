package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/later/internal"
	"github.com/gnolang/later/internal/config"
	"github.com/gnolang/later/internal/standards"
	tt "github.com/gnolang/later/internal/types"
	"github.com/gnolang/later/scanner"
)

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// Options select the standards and filters of a run. Zero values fall back
// to the settings.
type Options struct {
	RulesDir  string
	Standards string
	CacheDir  string
	Logger    *zap.Logger
}

// New builds an engine from settings: it reads the standards (the built-in
// set when no rules directory is configured), caps them at the configured
// version and applies the line ranges and excluded paths.
func New(settings *config.Settings, opts Options) (*internal.Engine, error) {
	if settings == nil {
		settings = config.Defaults()
	}

	rulesDir := opts.RulesDir
	if rulesDir == "" {
		rulesDir = settings.RulesDir
	}
	provider := standards.Builtin()
	if rulesDir != "" {
		var err error
		provider, err = standards.Read(rulesDir)
		if err != nil {
			return nil, err
		}
	}

	upTo := opts.Standards
	if upTo == "" {
		upTo = settings.Standards
	}
	provider, err := provider.Select(upTo)
	if err != nil {
		return nil, err
	}

	engineOpts := []internal.Option{internal.WithRanges(settings.Ranges)}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, internal.WithLogger(opts.Logger))
	}
	if opts.CacheDir != "" {
		cache, err := internal.NewCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, internal.WithCache(cache))
	}

	engine, err := internal.NewEngine(provider, engineOpts...)
	if err != nil {
		return nil, err
	}
	for _, path := range settings.Exclude {
		engine.IgnorePath(path)
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var (
		allIssues []tt.Issue
		failed    error
	)
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		var fileErrs *FileErrors
		if err != nil && !errors.As(err, &fileErrs) {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		failed = errors.Join(failed, err)
		allIssues = append(allIssues, issues...)
	}

	return allIssues, failed
}

// FileErrors lists the files of a directory walk that could not be linted.
// The issues of the other files are still returned alongside it.
type FileErrors struct {
	Errs []error
}

func (e *FileErrors) Error() string {
	return fmt.Sprintf("%d file(s) failed: %v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *FileErrors) Unwrap() []error { return e.Errs }

// progressOutput receives the progress bar of directory walks.
var progressOutput io.Writer = os.Stderr

// ProcessPath lints a single file, or every YAML file under a directory on
// a bounded worker pool. Files that fail are logged and skipped, and reported
// together as a *FileErrors after the walk.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.IsYAMLFile(path) {
			if logger != nil {
				logger.Debug("Skipping non-YAML file", zap.String("path", path))
			}
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := scanner.New(path).Paths()
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		issues []tt.Issue
		errs   []error
	)

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer bar.Add(1)

			fileIssues, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", fp, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			issues = append(issues, fileIssues...)
			mu.Unlock()
		}(filePath)
	}
	wg.Wait()
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return issues, &FileErrors{Errs: errs}
	}
	return issues, nil
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}
