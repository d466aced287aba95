package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/kv"
	"github.com/benz9527/rbkit/xlog"
)

type ReloadFunc func(items kv.OrderedMap[string, string])

// Watcher reloads the config file into a fresh map on every write or
// create of the file. The editors may replace the file by rename, so the
// parent dir is watched instead of the file itself.
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	onReload  ReloadFunc
	opts      []LoaderOption
	logger    xlog.XLogger
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewWatcher(path string, onReload ReloadFunc, opts ...LoaderOption) (*Watcher, error) {
	if onReload == nil {
		return nil, infra.NewErrorStack("[config] nil reload func")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "config path "+path)
	}

	w := &Watcher{
		path:     absPath,
		onReload: onReload,
		opts:     opts,
		logger:   applyLoaderOpts(opts...).logger,
	}
	if w.watcher, err = fsnotify.NewWatcher(); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "failed to create config watcher")
	}
	if err = w.watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = w.watcher.Close()
		return nil, infra.WrapErrorStackWithMessage(err, "failed to add config dir to watcher")
	}

	w.wg.Add(1)
	go w.watchAndReload()
	return w, nil
}

// Endless until the watcher is closed.
func (w *Watcher) watchAndReload() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// The loader map option is not reused, each reload gets a fresh map.
			opts := append(append(make([]LoaderOption, 0, len(w.opts)+1), w.opts...), WithLoaderMap(nil))
			items, err := Load(w.path, opts...)
			if err != nil {
				w.logger.ErrorStack(err, "config reload failed", zap.String("path", w.path))
				continue
			}
			w.logger.Info("config reloaded", zap.String("path", w.path), zap.Int64("len", items.Len()))
			w.onReload(items)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.ErrorStack(infra.WrapErrorStack(err), "config watcher error", zap.String("path", w.path))
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
