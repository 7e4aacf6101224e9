// Package logger provides structured logging with per-run scoping
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used throughout UEForge
type Logger interface {
	Info(message string, fields ...Field)
	Error(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Debug(message string, fields ...Field)
	WithRun(runID string) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// runLogger implements Logger with run awareness
type runLogger struct {
	logger *logrus.Logger
	runID  string
}

// formatter renders entries as "⚒ [15:04:05] LEVEL: (run) message {fields}"
type formatter struct {
	TimestampFormat string
	DisableColors   bool
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)

	var levelColor *color.Color
	var levelText string
	switch entry.Level {
	case logrus.ErrorLevel:
		levelColor = color.New(color.FgRed, color.Bold)
		levelText = "ERROR"
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
		levelText = "WARN"
	case logrus.DebugLevel:
		levelColor = color.New(color.FgWhite, color.Faint)
		levelText = "DEBUG"
	default:
		levelColor = color.New(color.FgCyan)
		levelText = "INFO"
	}

	runPrefix := ""
	if run, ok := entry.Data["run"]; ok {
		runPrefix = fmt.Sprintf("(%s) ", color.New(color.FgBlue).Sprint(run))
		delete(entry.Data, "run")
	}

	var output string
	if f.DisableColors {
		output = fmt.Sprintf("⚒ [%s] %s: %s%s", timestamp, levelText, runPrefix, entry.Message)
	} else {
		output = fmt.Sprintf("⚒ [%s] %s: %s%s",
			timestamp, levelColor.Sprint(levelText), runPrefix, entry.Message)
	}

	if len(entry.Data) > 0 {
		fields := " {"
		first := true
		for k, v := range entry.Data {
			if !first {
				fields += ", "
			}
			fields += fmt.Sprintf("%s=%v", k, v)
			first = false
		}
		fields += "}"
		output += color.New(color.FgWhite, color.Faint).Sprint(fields)
	}

	return []byte(output + "\n"), nil
}

// New creates a logger writing to stderr at the given level
func New(logLevel string) Logger {
	return newWithOutput(logLevel, os.Stderr, false)
}

// NewWithOutput creates a logger with a custom destination, for tests
func NewWithOutput(logLevel string, output io.Writer) Logger {
	return newWithOutput(logLevel, output, true)
}

func newWithOutput(logLevel string, output io.Writer, disableColors bool) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&formatter{
		TimestampFormat: "15:04:05",
		DisableColors:   disableColors,
	})
	log.SetOutput(output)

	return &runLogger{logger: log}
}

// WithRun returns a logger that tags every entry with the run ID
func (l *runLogger) WithRun(runID string) Logger {
	return &runLogger{logger: l.logger, runID: runID}
}

func (l *runLogger) convertFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields)
	if l.runID != "" {
		result["run"] = l.runID
	}
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}

func (l *runLogger) Info(message string, fields ...Field) {
	l.logger.WithFields(l.convertFields(fields)).Info(message)
}

func (l *runLogger) Error(message string, fields ...Field) {
	l.logger.WithFields(l.convertFields(fields)).Error(message)
}

func (l *runLogger) Warn(message string, fields ...Field) {
	l.logger.WithFields(l.convertFields(fields)).Warn(message)
}

func (l *runLogger) Debug(message string, fields ...Field) {
	l.logger.WithFields(l.convertFields(fields)).Debug(message)
}
