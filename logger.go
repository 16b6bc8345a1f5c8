package tracker

import (
	"fmt"
	"io"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogrusLogger adapts a logrus entry to Logger. Messages with format verbs
// are formatted printf style, otherwise trailing args are read as key/value
// pairs and attached as fields.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger builds the root logger from opts
func NewLogger(opts LogOptions) (*LogrusLogger, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid log level").
			WithTextCode("INVALID_CONFIG")
	}
	base.SetLevel(level)

	switch opts.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
	}
	base.SetOutput(out)

	return &LogrusLogger{entry: logrus.NewEntry(base)}, nil
}

// NewLoggerFromEntry wraps an existing logrus entry
func NewLoggerFromEntry(entry *logrus.Entry) *LogrusLogger {
	return &LogrusLogger{entry: entry}
}

// GetLogger returns a child logger tagged with name
func (l *LogrusLogger) GetLogger(name string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("logger", name)}
}

// With returns a child logger carrying the given key/value pairs
func (l *LogrusLogger) With(args ...any) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithFields(fieldsFromArgs(args))}
}

func (l *LogrusLogger) Debug(format string, args ...any) {
	l.log(logrus.DebugLevel, format, args)
}

func (l *LogrusLogger) Info(format string, args ...any) {
	l.log(logrus.InfoLevel, format, args)
}

func (l *LogrusLogger) Warn(format string, args ...any) {
	l.log(logrus.WarnLevel, format, args)
}

func (l *LogrusLogger) Error(format string, args ...any) {
	l.log(logrus.ErrorLevel, format, args)
}

func (l *LogrusLogger) log(level logrus.Level, format string, args []any) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}

	if strings.Contains(format, "%") {
		l.entry.Logf(level, format, args...)
		return
	}

	l.entry.WithFields(fieldsFromArgs(args)).Log(level, format)
}

func fieldsFromArgs(args []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			fields["!BADKEY"] = key
			break
		}
		fields[key] = args[i+1]
	}
	return fields
}
