package patcher

import (
	"bytes"

	"github.com/rs/zerolog"
)

// maxLineLength caps a single logged line. Longer output is logged in
// chunks of this size.
const maxLineLength = 64 * 1024

// lineLogger is an io.Writer that logs every complete line written to it.
// It never fails a write, so the child process is never blocked on output
// nobody reads.
type lineLogger struct {
	logger zerolog.Logger
	level  zerolog.Level
	stream string
	buf    []byte
}

func newLineLogger(logger zerolog.Logger, level zerolog.Level, stream string) *lineLogger {
	return &lineLogger{logger: logger, level: level, stream: stream}
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
			l.emit(l.buf[:i])
			l.buf = l.buf[i+1:]
			continue
		}
		if len(l.buf) >= maxLineLength {
			l.emit(l.buf[:maxLineLength])
			l.buf = l.buf[maxLineLength:]
			continue
		}
		break
	}
	// keep the backing array from growing without bound
	l.buf = append([]byte(nil), l.buf...)
	return len(p), nil
}

// Flush logs a trailing line without a newline
func (l *lineLogger) Flush() {
	if len(l.buf) > 0 {
		l.emit(l.buf)
		l.buf = nil
	}
}

func (l *lineLogger) emit(line []byte) {
	l.logger.WithLevel(l.level).Str("stream", l.stream).Msg(string(bytes.TrimRight(line, "\r")))
}
