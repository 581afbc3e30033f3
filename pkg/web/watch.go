package web

import (
	"context"
	"os"
	"time"

	"github.com/consai/consai/pkg/config"
	"github.com/fsnotify/fsnotify"
)

// WatchConfig reloads the server configuration whenever the config file
// changes on disk. Blocks until ctx is canceled; a watcher setup
// failure only disables hot reload.
func (s *Server) WatchConfig(ctx context.Context, configPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warnf("failed to create config file watcher: %v", err)
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			s.logger.Warnf("failed to close config file watcher: %v", err)
		}
	}()

	if err := watcher.Add(configPath); err != nil {
		s.logger.Warnf("failed to watch config file %s: %v", configPath, err)
		return
	}
	s.logger.Infof("watching config file for changes: %s", configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// React to write, create, rename, and remove events (editors often use atomic writes)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				// Small delay to ensure the new file is fully written
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					s.logger.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				// Re-add the config file to watcher in case it was replaced
				if err := watcher.Add(configPath); err != nil {
					s.logger.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				// Add a small delay to ensure file write is complete
				time.Sleep(100 * time.Millisecond)
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				s.logger.Errorf("failed to reload configuration: %v", err)
				continue
			}
			s.Reconfigure(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warnf("config file watcher error: %v", err)
		}
	}
}
