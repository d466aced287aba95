package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		check  func(tt *testing.T, res string)
	}{
		{
			initPC,
			"%s",
			func(tt *testing.T, res string) {
				require.Equal(tt, "err_stack_test.go", res)
			},
		},
		{
			initPC,
			"%+s",
			func(tt *testing.T, res string) {
				require.True(tt, strings.HasPrefix(res, "github.com/benz9527/rbkit/lib/infra.init\n\t"))
				require.True(tt, strings.HasSuffix(res, "lib/infra/err_stack_test.go"))
			},
		},
		{
			initPC,
			"%n",
			func(tt *testing.T, res string) {
				require.Equal(tt, "init", res)
			},
		},
		{
			initPC,
			"%d",
			func(tt *testing.T, res string) {
				require.Equal(tt, "15", res)
			},
		},
		{
			initPC,
			"%v",
			func(tt *testing.T, res string) {
				require.Equal(tt, "err_stack_test.go:15", res)
			},
		},
		{
			Frame(0),
			"%s",
			func(tt *testing.T, res string) {
				require.Equal(tt, "unknownFile", res)
			},
		},
		{
			Frame(0),
			"%n",
			func(tt *testing.T, res string) {
				require.Equal(tt, "unknownFunc", res)
			},
		},
		{
			Frame(0),
			"%d",
			func(tt *testing.T, res string) {
				require.Equal(tt, "0", res)
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.format, func(tt *testing.T) {
			tc.check(tt, fmt.Sprintf(tc.format, tc.Frame))
		})
	}
}

func TestFrameMarshal(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/rbkit/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:15"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))

	_bytes, err := json.Marshal(Frame(0))
	require.NoError(t, err)
	require.Equal(t, `{"frame":"unknownFrame"}`, string(_bytes))

	_bytes, err = json.Marshal(initPC)
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, json.Unmarshal(_bytes, &res))
	require.Equal(t, "github.com/benz9527/rbkit/lib/infra.init", res["func"])
}

var errSentinel = errors.New("sentinel")

func TestErrorStack(t *testing.T) {
	err := NewErrorStack("boom")
	require.Error(t, err)
	require.Equal(t, "boom", err.Error())

	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestErrorStack", fmt.Sprintf("%n", es.Frames()[0]))
	require.Nil(t, es.Unwrap())

	wrapped := WrapErrorStackWithMessage(errSentinel, "remove")
	require.ErrorIs(t, wrapped, errSentinel)
	require.Equal(t, "remove: sentinel", wrapped.Error())
	require.True(t, strings.HasPrefix(fmt.Sprintf("%+v", wrapped), "remove: sentinel\n"))

	plain := WrapErrorStack(errSentinel)
	require.ErrorIs(t, plain, errSentinel)
	require.Equal(t, "sentinel", plain.Error())

	// Already carrying frames, keep the original.
	require.Same(t, wrapped, WrapErrorStack(wrapped))

	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "ignored"))
}

func TestErrorStack_MarshalLogObject(t *testing.T) {
	err := WrapErrorStackWithMessage(errSentinel, "insert")
	es, ok := err.(ErrorStack)
	require.True(t, ok)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "insert: sentinel", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Equal(t, len(es.Frames()), len(frames))
}
