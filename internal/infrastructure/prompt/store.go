package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// Store 持有当前系统提示，文件变更时重新加载
type Store struct {
	path    string
	current atomic.Pointer[string]
	logger  *slog.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewStore 加载提示文件；path 为空或文件不存在时使用内置提示
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		logger: log.NewModuleLogger("prompt", "store"),
		stopCh: make(chan struct{}),
	}

	text, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(&text)
	return s, nil
}

// ProvideStore 根据配置创建并按需启动监听
func ProvideStore(cfg *config.PromptConfig) (*Store, func(), error) {
	s, err := NewStore(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Watch && cfg.Path != "" {
		if err := s.Watch(); err != nil {
			s.logger.Warn("Prompt hot reload disabled", "path", cfg.Path, "error", err)
		}
	}
	return s, s.Close, nil
}

// SystemPrompt 返回当前系统提示
func (s *Store) SystemPrompt() string {
	return *s.current.Load()
}

func (s *Store) load() (string, error) {
	if s.path == "" {
		return DefaultSystemPrompt, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Prompt file not found, using built-in prompt", "path", s.path)
		return DefaultSystemPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Watch 监听提示文件所在目录；编辑器常以重命名方式保存，因此不直接监听文件
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.watchLoop()

	s.logger.Info("Watching prompt file", "path", s.path)
	return nil
}

func (s *Store) watchLoop() {
	defer s.wg.Done()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-s.stopCh:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.reload()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("Prompt watcher error", "error", err)
		}
	}
}

// reload 读取失败时保留旧提示
func (s *Store) reload() {
	text, err := s.load()
	if err != nil {
		s.logger.Error("Failed to reload prompt", "path", s.path, "error", err)
		return
	}
	if text == s.SystemPrompt() {
		return
	}
	s.current.Store(&text)
	s.logger.Info("System prompt reloaded", "path", s.path, "length", len(text))
}

// Close 停止监听
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stopCh)
		if s.watcher != nil {
			s.watcher.Close()
		}
		s.wg.Wait()
	})
}
