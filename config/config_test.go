package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/rbkit/lib/kv"
	"github.com/benz9527/rbkit/xlog"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *testMemOutWriter) Sync() error { return nil }

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.String()
}

func testLogger(w *testMemOutWriter) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerWriter(w),
	)
}

func TestParseLine(t *testing.T) {
	testcases := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"key=val\n", "key", "val", true},
		{"  key  =  val  \n", "key", "val", true},
		{"key=val # comment\n", "key", "val", true},
		{"# key=val\n", "", "", false},
		{"key=\n", "", "", false},
		{"=val\n", "", "", false},
		{"no split here\n", "", "", false},
		{"\n", "", "", false},
		{"url=http://host/?a=b", "url", "http://host/?a=b", true},
		{"key=va#l", "key", "va", true},
		{"\tkey\t=\tval\r\n", "key", "val", true},
	}
	for _, tc := range testcases {
		t.Run(strings.TrimSpace(tc.line), func(tt *testing.T) {
			key, val, ok := parseLine(tc.line)
			require.Equal(tt, tc.ok, ok)
			require.Equal(tt, tc.key, key)
			require.Equal(tt, tc.val, val)
		})
	}
}

func TestParseLine_Truncate(t *testing.T) {
	longKey, longVal := strings.Repeat("k", 600), strings.Repeat("v", 1024)
	key, val, ok := parseLine(longKey + "=" + longVal)
	require.True(t, ok)
	require.Len(t, key, MaxKeySize)
	require.Len(t, val, MaxValSize)
}

func TestParseLine_TruncateRuneBoundary(t *testing.T) {
	testcases := []struct {
		name   string
		val    string
		expLen int
	}{
		{"2 bytes rune across the limit", strings.Repeat("v", MaxValSize-1) + "é" + "tail", MaxValSize - 1},
		{"3 bytes rune across the limit", strings.Repeat("v", MaxValSize-2) + "世" + "tail", MaxValSize - 2},
		{"rune ends at the limit", strings.Repeat("v", MaxValSize-2) + "é" + "tail", MaxValSize},
		{"ascii", strings.Repeat("v", MaxValSize+1), MaxValSize},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, val, ok := parseLine("k=" + tc.val)
			require.True(tt, ok)
			require.Len(tt, val, tc.expLen)
			require.True(tt, utf8.ValidString(val))
			require.True(tt, strings.HasPrefix(tc.val, val))
		})
	}
}

func TestParse(t *testing.T) {
	w := &testMemOutWriter{}
	logger := testLogger(w)
	defer logger.Close()

	text := `# rbkit config
name = rbkit
port=8080
empty=
=orphan
port = 9090   # later one wins
mode=debug`
	items, err := Parse(strings.NewReader(text), WithLoaderLogger(logger), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), items.Len())
	require.Equal(t, []string{"mode", "name", "port"}, items.Keys())
	port, ok := items.Get("port")
	require.True(t, ok)
	require.Equal(t, "9090", port)
	mode, _ := items.Get("mode")
	require.Equal(t, "debug", mode)

	logs := w.String()
	require.Equal(t, 4, strings.Count(logs, "config accepted"))
	require.Contains(t, logs, `"key":"name"`)
	require.NotContains(t, logs, "orphan")

	_, err = Parse(nil)
	require.ErrorIs(t, err, ErrConfigNilReader)
}

func TestParse_IntoExistingMap(t *testing.T) {
	items := kv.NewOrderedRBMap[string, string]()
	require.NoError(t, items.Put("keep", "1"))
	w := &testMemOutWriter{}
	logger := testLogger(w)
	defer logger.Close()

	res, err := Parse(strings.NewReader("a=1\nkeep=2\n"), WithLoaderLogger(logger), WithLoaderMap(items))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "keep"}, res.Keys())
	val, _ := items.Get("keep")
	require.Equal(t, "2", val)

	// The map rejects any put after released.
	items.Release()
	_, err = Parse(strings.NewReader("b=1\n"), WithLoaderLogger(logger), WithLoaderMap(items))
	require.Error(t, err)
	require.Contains(t, w.String(), "config parsed with errors")
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("broken reader")
}

func TestParse_ReadError(t *testing.T) {
	w := &testMemOutWriter{}
	logger := testLogger(w)
	defer logger.Close()
	items, err := Parse(errReader{}, WithLoaderLogger(logger))
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken reader")
	require.Equal(t, int64(0), items.Len())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	require.NoError(t, os.WriteFile(path, []byte("b=2\na=1\n# c=3\n"), 0o644))

	w := &testMemOutWriter{}
	logger := testLogger(w)
	defer logger.Close()

	items, err := Load(path, WithLoaderLogger(logger))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, items.Keys())
	require.Equal(t, []string{"1", "2"}, items.Values())

	_, err = Load(filepath.Join(dir, "absent.conf"), WithLoaderLogger(logger))
	require.Error(t, err)
	_, err = Load("  ", WithLoaderLogger(logger))
	require.ErrorIs(t, err, ErrConfigEmptyPath)

	// The symlink escaping the dir is rejected.
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.conf")
	require.NoError(t, os.WriteFile(target, []byte("k=v\n"), 0o644))
	link := filepath.Join(dir, "link.conf")
	require.NoError(t, os.Symlink(target, link))
	_, err = Load(link, WithLoaderLogger(logger))
	require.Error(t, err)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watch.conf")
	require.NoError(t, os.WriteFile(path, []byte("a=1\n"), 0o644))

	w := &testMemOutWriter{}
	logger := testLogger(w)
	defer logger.Close()

	_, err := NewWatcher(path, nil, WithLoaderLogger(logger))
	require.Error(t, err)

	reloaded := make(chan kv.OrderedMap[string, string], 8)
	watcher, err := NewWatcher(path, func(items kv.OrderedMap[string, string]) {
		reloaded <- items
	}, WithLoaderLogger(logger), WithLoaderMap(kv.NewOrderedRBMap[string, string]()))
	require.NoError(t, err)

	// Unrelated files in the same dir are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.conf"), []byte("x=1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a=2\nb=3\n"), 0o644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case items := <-reloaded:
			require.False(t, items.Contains("x"))
			if items.Len() < 2 {
				continue
			}
			require.Equal(t, []string{"a", "b"}, items.Keys())
			val, _ := items.Get("a")
			require.Equal(t, "2", val)
			require.NoError(t, watcher.Close())
			require.NoError(t, watcher.Close())
			require.Contains(t, w.String(), "config reloaded")
			return
		case <-timeout:
			t.Fatal("config reload timeout")
		}
	}
}
