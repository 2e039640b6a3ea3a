package templates

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever a YAML file in the override dir
// changes. Bursts of events within debounce collapse into one reload.
// It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if r.overrideDir == "" {
		return errors.New("no template dir configured")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("failed to create fsnotify watcher", "error", err)
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(r.overrideDir); err != nil {
		r.logger.Error("failed to watch template dir", "dir", r.overrideDir, "error", err)
		return err
	}
	r.logger.Info("watching template dir", "dir", r.overrideDir)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isYAML(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce <= 0 {
				r.reloadLogged()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			r.reloadLogged()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("template watcher error", "error", err)
		}
	}
}

func (r *Registry) reloadLogged() {
	if err := r.Reload(); err != nil {
		r.logger.Error("template reload failed", "error", err)
	}
}
