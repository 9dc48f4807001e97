package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Library serves policy reference texts from a directory of .txt files,
// one per topic. Texts are cached after first read; a filesystem watcher
// invalidates the cache when HR edits a policy file, so updated text
// reaches prompts without a restart.
type Library struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLibrary creates a policy library rooted at dir. The directory does not
// need to exist; missing files degrade to a placeholder text.
func NewLibrary(dir string) *Library {
	l := &Library{
		dir:   dir,
		cache: make(map[string]string),
		done:  make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("Policy watcher unavailable, texts cached until restart")
		return l
	}
	if err := watcher.Add(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Cannot watch policy dir")
		watcher.Close()
		return l
	}

	l.watcher = watcher
	go l.watchLoop()
	return l
}

// filename derives the on-disk name for a topic:
// "Leave Policy" → "leave-policy.txt".
func filename(topic string) string {
	return strings.ReplaceAll(strings.ToLower(topic), " ", "-") + ".txt"
}

// Text returns the reference text for a topic. Never fails: an unknown or
// unreadable topic yields a placeholder naming the missing file.
func (l *Library) Text(topic string) string {
	name := filename(topic)

	l.mu.RLock()
	if text, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return text
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return fmt.Sprintf("Policy file '%s' not found.", name)
	}

	text := string(data)
	l.mu.Lock()
	l.cache[name] = text
	l.mu.Unlock()
	return text
}

func (l *Library) watchLoop() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			l.mu.Lock()
			delete(l.cache, name)
			l.mu.Unlock()
			log.Info().Str("file", name).Msg("Policy text reloaded")
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Policy watcher error")
		}
	}
}

// Close stops the filesystem watcher.
func (l *Library) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
