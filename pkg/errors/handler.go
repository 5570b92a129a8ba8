package errors

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = NewLogHandler(nil, false)
)

// SetHandler installs h as the global error handler.
// Pass nil to restore the default non-verbose LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = NewLogHandler(nil, false)
	}
	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()
}

// Handler returns the global error handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report sends err to the global handler, stamping it with the current
// time if it has none.
func Report(err *StateError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// Recover reports a panic on a goroutine statekit owns as a [KindPanic]
// error. It must be deferred directly:
//
//	defer errors.Recover("state.Completion", name)
func Recover(op, container string) {
	r := recover()
	if r == nil {
		return
	}
	var err error
	if e, ok := r.(error); ok {
		err = fmt.Errorf("panic: %w", e)
	} else {
		err = fmt.Errorf("panic: %v", r)
	}
	Report(&StateError{
		Op:         op,
		Kind:       KindPanic,
		Container:  container,
		Err:        err,
		StackTrace: CaptureStack(),
	})
}

// CaptureStack returns the call stack of its caller's caller, one
// function per entry followed by its file and line.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for n > 0 {
		frame, more := frames.Next()
		sb.WriteString(frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n")
		if !more {
			break
		}
	}
	return sb.String()
}
