package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docq/internal/logger"
)

// watchSettle is how long a file must stay quiet before it is ingested.
// PDFs are often written in several chunks; acting on the first event
// would ingest a partial file.
const watchSettle = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest new PDFs",
	Long: `Watches a directory and automatically ingests any PDF created or
modified in it. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for PDFs. Press Ctrl+C to stop.\n", dir)

	w := &dirWatcher{settle: watchSettle, pending: make(map[string]*time.Timer)}
	defer w.stopAll()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			w.schedule(event.Name, func(path string) {
				ingestWatched(cmd, path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

func ingestWatched(cmd *cobra.Command, path string) {
	pdf, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return
	}

	filename := filepath.Base(path)
	cmd.Printf("Ingesting %s...\n", filename)

	id, err := ingestService.Ingest(context.Background(), "", filename, pdf)
	if err != nil {
		cmd.Printf("Failed to ingest %s: %v\n", filename, err)
		return
	}
	cmd.Printf("Queued %s as document %s.\n", filename, id)
}

// dirWatcher debounces per-file events so a PDF is ingested once after
// its writes settle, not once per write.
type dirWatcher struct {
	settle  time.Duration
	mu      sync.Mutex
	pending map[string]*time.Timer
}

func (w *dirWatcher) schedule(path string, fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		fn(path)
	})
}

func (w *dirWatcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
