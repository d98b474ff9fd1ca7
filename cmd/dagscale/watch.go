package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "watch <plan>",
		Short: "Print the critical path again whenever the plan file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			analyse := func() {
				b, err := a.load(path)
				if err != nil {
					log.Error().Err(err).Str("plan", path).Msg("plan rejected")
					return
				}
				total, cp, err := b.CriticalPath()
				if err != nil {
					log.Error().Err(err).Str("plan", path).Msg("analysis failed")
					return
				}
				fmt.Fprintf(out, "--- %s @ %s\n", path, time.Now().Format(time.TimeOnly))
				if err := printCriticalPath(out, total, cp, a.unit(unit)); err != nil {
					log.Error().Err(err).Msg("printing critical path")
				}
			}

			analyse()
			return watchFile(cmd.Context(), path, a.cfg.Watch.Debounce(), analyse)
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "Time unit for the total (defaults to report.unit)")
	return cmd
}

// watchFile calls onChange after path is written, created or renamed into
// place, once per burst of events no more than debounce apart. It watches the
// parent directory so editors that replace the file are followed. It returns
// when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	log.Info().Str("plan", target).Dur("debounce", debounce).Msg("watching plan")

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Trace().Str("op", event.Op.String()).Msg("plan changed")
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}
