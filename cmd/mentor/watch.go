package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/mentor/internal/admission"
	"github.com/steveyegge/mentor/internal/dispatch"
	"github.com/steveyegge/mentor/internal/types"
)

var enableDispatch bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and run admission decisions on every save",
	Long: `Watch a directory for file writes. Each save becomes a code change that
runs through the admission controller; admitted changes are queued and,
with --dispatch, sent to the Anthropic API for mentor feedback.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []admission.Option
		var dispatcher admission.Dispatcher
		if enableDispatch {
			d, err := dispatch.NewAnthropicDispatcher(dispatch.Config{})
			if err != nil {
				return err
			}
			dispatcher = d
			opts = append(opts, admission.WithDispatcher(d))
		}

		ctrl, err := newController(opts...)
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(args[0]); err != nil {
			return fmt.Errorf("failed to watch %s: %w", args[0], err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Drain and sweep loops run until interrupted
		go func() {
			if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("controller loops stopped", "error", err)
			}
		}()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("%s %s\n", cyan("watching"), args[0])

		// previous content per file, for change kind detection
		previous := make(map[string]string)

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if skipPath(event.Name) {
					continue
				}

				change, err := changeFromFile(event.Name, previous[event.Name])
				if err != nil {
					slog.Warn("skipping unreadable file", "path", event.Name, "error", err)
					continue
				}
				previous[event.Name] = change.Content

				decision := ctrl.ShouldTrigger(change, sessionID)
				printDecision(event.Name, decision)

				if !decision.Trigger {
					continue
				}

				// Immediate findings never touch the queue: dispatch
				// them directly so they cannot wait behind anything.
				if decision.Priority == types.PriorityImmediate {
					if dispatcher != nil {
						req := types.NewAnalysisRequest(change, decision.Priority, sessionID, time.Now())
						go func() {
							result, err := dispatcher.Analyze(ctx, req)
							if err != nil {
								slog.Error("immediate analysis failed", "file", req.Change.FilePath, "error", err)
								return
							}
							ctrl.SetCachedAnalysis(req.Change, *result, req.SessionID)
							fmt.Printf("\n%s\n\n", result.Summary)
						}()
					}
					continue
				}
				ctrl.EnqueueAnalysis(change, decision.Priority, sessionID)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("watch error", "error", err)
			}
		}
	},
}

// skipPath filters out noise the watcher should never analyze
func skipPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return true
	}
	return detectLanguage(path) == "text"
}

func init() {
	watchCmd.Flags().BoolVar(&enableDispatch, "dispatch", false, "send admitted changes to the Anthropic API")
	rootCmd.AddCommand(watchCmd)
}
