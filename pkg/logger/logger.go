package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin structured-logging facade over zerolog. An optional
// collector aggregates error logs and ships them to a publisher.
type Logger struct {
	zl        zerolog.Logger
	collector *Collector
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string // defaults to RFC3339Nano
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zl := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{zl: zl}, nil
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(l.zl.Info(), msg, fields) }

func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.log(l.zl.Error(), msg, fields)
	l.collect("error", msg, fields)
}

func (l *Logger) log(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.addTo(event)
	}
	event.Msg(msg)
}

// AddCollector attaches an aggregating collector. An existing collector is
// closed first.
func (l *Logger) AddCollector(cfg *CollectorConfig) {
	if l.collector != nil {
		l.collector.Close()
	}
	l.collector = NewCollector(cfg)
}

func (l *Logger) RemoveCollector() {
	if l.collector != nil {
		l.collector.Close()
		l.collector = nil
	}
}

func (l *Logger) collect(level, msg string, fields []Field) {
	if l.collector == nil {
		return
	}

	// Skip frames: collect -> Error -> caller.
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		parts := strings.Split(file, "SignalPull")
		caller = fmt.Sprintf("%s:%d", parts[len(parts)-1], line)
	}

	fieldMap := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		fieldMap[f.Key] = f.value()
	}
	l.collector.Add(level, msg, fieldMap, caller)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindInt64
	kindError
	kindAny
)

// Field is a typed key/value pair attached to a log event.
type Field struct {
	Key  string
	kind fieldKind
	str  string
	num  int64
	err  error
	any  interface{}
}

func (f Field) addTo(event *zerolog.Event) {
	switch f.kind {
	case kindString:
		event.Str(f.Key, f.str)
	case kindInt:
		event.Int(f.Key, int(f.num))
	case kindInt64:
		event.Int64(f.Key, f.num)
	case kindError:
		event.Err(f.err)
	case kindAny:
		event.Interface(f.Key, f.any)
	}
}

func (f Field) value() interface{} {
	switch f.kind {
	case kindString:
		return f.str
	case kindInt:
		return int(f.num)
	case kindInt64:
		return f.num
	case kindError:
		if f.err != nil {
			return f.err.Error()
		}
		return nil
	default:
		return f.any
	}
}

func String(key, value string) Field {
	return Field{Key: key, kind: kindString, str: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, kind: kindInt, num: int64(value)}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, kind: kindInt64, num: value}
}

func Error(err error) Field {
	return Field{Key: "error", kind: kindError, err: err}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, kind: kindAny, any: value}
}

// Duration logs a duration as integer milliseconds.
func Duration(key string, value time.Duration) Field {
	return Int(key, int(value/time.Millisecond))
}
