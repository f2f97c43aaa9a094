package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/juju/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	Verbose3 LogLevel = iota
	Verbose2
	Verbose1
	Info
	Warning
	Error
)

var levelNames = map[string]LogLevel{
	"verbose3": Verbose3,
	"verbose2": Verbose2,
	"verbose1": Verbose1,
	"info":     Info,
	"warning":  Warning,
	"error":    Error,
}

// ParseLevel converts the value of the --loglevel flag to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	lvl, ok := levelNames[strings.ToLower(s)]
	if !ok {
		return Info, errors.Errorf(
			"invalid log level %q, try error, warning, info, verbose1, verbose2 or verbose3", s,
		)
	}

	return lvl, nil
}

func (lvl LogLevel) zapLevel() zapcore.Level {
	switch lvl {
	case Verbose3, Verbose2, Verbose1:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

var sink *zap.Logger
var sinkMtx sync.Mutex

// SetOutput makes all loggers write to w. By default they write to stderr.
func SetOutput(w io.Writer) {
	sinkMtx.Lock()
	defer sinkMtx.Unlock()

	sink = newSink(zapcore.AddSync(w))
}

func newSink(ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.999")

	// Filtering by level happens in Logger, so the core lets everything in.
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, zapcore.DebugLevel)
	return zap.New(core)
}

func zapLogger() *zap.Logger {
	sinkMtx.Lock()
	defer sinkMtx.Unlock()

	if sink == nil {
		sink = newSink(zapcore.Lock(os.Stderr))
	}

	return sink
}

// Sync flushes buffered entries, if any.
func Sync() {
	_ = zapLogger().Sync()
}

type Logger struct {
	minLevel LogLevel

	namespace string
}

func NewLogger(minLevel LogLevel) *Logger {
	return &Logger{
		minLevel: minLevel,
	}
}

func (l *Logger) thisOrDefault() *Logger {
	if l != nil {
		return l
	}

	return &Logger{
		minLevel: Warning,
	}
}

func (l *Logger) WithNamespaceAppended(n string) *Logger {
	l = l.thisOrDefault()

	ns := l.namespace
	if ns != "" {
		ns += "/"
	}
	ns += n

	newLogger := *l
	newLogger.namespace = ns
	return &newLogger
}

func (l *Logger) Verbose3f(format string, a ...interface{}) {
	l.Printf(Verbose3, format, a...)
}

func (l *Logger) Verbose2f(format string, a ...interface{}) {
	l.Printf(Verbose2, format, a...)
}

func (l *Logger) Verbose1f(format string, a ...interface{}) {
	l.Printf(Verbose1, format, a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.Printf(Info, format, a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	l.Printf(Warning, format, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.Printf(Error, format, a...)
}

func (l *Logger) Printf(level LogLevel, format string, a ...interface{}) {
	l = l.thisOrDefault()

	if level < l.minLevel {
		return
	}

	zl := zapLogger()
	if l.namespace != "" {
		zl = zl.Named(l.namespace)
	}

	if ce := zl.Check(level.zapLevel(), fmt.Sprintf(format, a...)); ce != nil {
		ce.Write()
	}
}
