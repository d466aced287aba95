package config

import (
	"bufio"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/rbkit/lib/infra"
	"github.com/benz9527/rbkit/lib/kv"
	"github.com/benz9527/rbkit/xlog"
)

const (
	// MaxKeySize and MaxValSize are the byte limits of an accepted
	// key and val, the longer ones are truncated.
	MaxKeySize = 511
	MaxValSize = 511

	commentMark = '#'
	keyValSplit = "="
	lineDelim   = '\n'
)

var (
	ErrConfigNilReader = errors.New("[config] nil reader")
	ErrConfigEmptyPath = errors.New("[config] empty path")
)

var defaultLogger = sync.OnceValue(func() xlog.XLogger {
	return xlog.NewXLogger()
})

type loaderCfg struct {
	logger xlog.XLogger
	items  kv.OrderedMap[string, string]
}

type LoaderOption func(cfg *loaderCfg)

func WithLoaderLogger(logger xlog.XLogger) LoaderOption {
	return func(cfg *loaderCfg) {
		cfg.logger = logger
	}
}

// WithLoaderMap loads into an existing map instead of a new one.
func WithLoaderMap(items kv.OrderedMap[string, string]) LoaderOption {
	return func(cfg *loaderCfg) {
		cfg.items = items
	}
}

func applyLoaderOpts(opts ...LoaderOption) *loaderCfg {
	cfg := &loaderCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}
	if cfg.items == nil {
		cfg.items = kv.NewOrderedRBMap[string, string]()
	}
	return cfg
}

// parseLine returns ok false if the line has no key or no val.
func parseLine(line string) (key, val string, ok bool) {
	if idx := strings.IndexByte(line, commentMark); idx >= 0 {
		line = line[:idx]
	}
	key, val, found := strings.Cut(line, keyValSplit)
	if !found {
		return "", "", false
	}
	key, val = truncate(strings.TrimSpace(key), MaxKeySize), truncate(strings.TrimSpace(val), MaxValSize)
	if key == "" || val == "" {
		return "", "", false
	}
	return key, val, true
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// Parse reads the key=value lines. A later duplicate key updates the val.
// Lines without "=", with an empty key or with an empty val are skipped,
// everything after "#" is a comment.
func Parse(r io.Reader, opts ...LoaderOption) (kv.OrderedMap[string, string], error) {
	if r == nil {
		return nil, infra.WrapErrorStack(ErrConfigNilReader)
	}
	cfg := applyLoaderOpts(opts...)

	var (
		merr   error
		lineNo int
	)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString(lineDelim)
		if len(line) > 0 {
			lineNo++
			if key, val, ok := parseLine(line); ok {
				if perr := cfg.items.Put(key, val); perr != nil {
					merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(perr, "put config"))
				} else {
					cfg.logger.Debug("config accepted",
						zap.Int("line", lineNo),
						zap.String("key", key),
						zap.String("val", val),
					)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			merr = multierr.Append(merr, infra.WrapErrorStackWithMessage(err, "read config"))
			break
		}
	}
	if merr != nil {
		cfg.logger.ErrorStack(merr, "config parsed with errors")
	}
	return cfg.items, merr
}

// Load opens the file beneath its dir, the symlinks escaping the dir
// are rejected.
func Load(path string, opts ...LoaderOption) (items kv.OrderedMap[string, string], err error) {
	if strings.TrimSpace(path) == "" {
		return nil, infra.WrapErrorStack(ErrConfigEmptyPath)
	}
	dir, base := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	f, err := safeopen.OpenBeneath(dir, base)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "open config "+path)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return Parse(f, opts...)
}
