package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/later/internal/types"
)

// settle is how long to wait after a write so editors that save in several
// steps are linted once.
const settle = 100 * time.Millisecond

// OnIssues replaces the default watch reporter, which logs every issue.
func (e *Engine) OnIssues(fn func(filename string, issues []tt.Issue)) {
	e.onIssues = fn
}

// StartWatching lints YAML files under dirs again whenever they are written.
func (e *Engine) StartWatching(dirs ...string) error {
	if e.watcher != nil {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.watchDirs = dirs
	e.stopWatch = make(chan struct{})
	e.watchWG.Add(1)
	go e.watchLoop()
	return nil
}

// StopWatching stops the watch loop and waits for it to exit.
func (e *Engine) StopWatching() error {
	if e.watcher == nil {
		e.logger.Debug("Not watching")
		return nil
	}

	close(e.stopWatch)
	err := e.watcher.Close()
	e.watchWG.Wait()
	e.watcher = nil
	return err
}

func (e *Engine) watchLoop() {
	defer e.watchWG.Done()
	for {
		select {
		case <-e.stopWatch:
			return
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !IsYAMLFile(event.Name) {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(settle)
	issues, err := e.Run(event.Name)
	if err != nil {
		e.logger.Error("Error linting file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	e.reportIssues(event.Name, issues)
}

func (e *Engine) reportIssues(filename string, issues []tt.Issue) {
	if e.onIssues != nil {
		e.onIssues(filename, issues)
		return
	}

	if len(issues) == 0 {
		e.logger.Info("No issues found", zap.String("file", filename))
		return
	}

	e.logger.Info("Found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		e.logger.Info("Issue",
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.String("message", issue.Message))
	}
}

// IsYAMLFile reports whether path has a YAML extension.
func IsYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
