package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	PROGRESS // Special level that always displays
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case PROGRESS:
		return "PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level, falling back to INFO
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Format represents the log output format
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat converts a format name to a Format, falling back to Text
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return JSON
	}
	return Text
}

// Logger handles structured logging
type Logger struct {
	out    io.Writer
	level  Level
	format Format
	mu     sync.Mutex
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  Level
	Format Format
	Output io.Writer
}

var (
	defaultLogger = &Logger{
		out:    os.Stderr,
		level:  INFO,
		format: Text,
	}

	debugColor    = color.New(color.FgCyan)
	infoColor     = color.New(color.FgGreen)
	warnColor     = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed)
	progressColor = color.New(color.FgBlue, color.Bold)
)

// Configure sets up the default logger
func Configure(config LogConfig) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = config.Level
	defaultLogger.format = config.Format
	if config.Output != nil {
		defaultLogger.out = config.Output
	}
}

// New creates a standalone logger, mostly useful in tests
func New(config LogConfig) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, level: config.Level, format: config.Format}
}

type logEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	if level != PROGRESS && level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if l.format == JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   msg,
			Data:      data,
		}
		if err := json.NewEncoder(l.out).Encode(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode log entry: %v\n", err)
		}
		return
	}

	var levelColor *color.Color
	switch level {
	case DEBUG:
		levelColor = debugColor
	case WARN:
		levelColor = warnColor
	case ERROR:
		levelColor = errorColor
	case PROGRESS:
		levelColor = progressColor
	default:
		levelColor = infoColor
	}

	levelStr := levelColor.Sprintf("%-5s", level.String())
	fmt.Fprintf(l.out, "%s %s: %s", timestamp, levelStr, msg)
	if data != nil {
		fmt.Fprintf(l.out, " %+v", data)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	l.log(DEBUG, msg, firstOrNil(data))
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, firstOrNil(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, firstOrNil(data))
}

func (l *Logger) Error(msg string, err error, data ...interface{}) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(ERROR, msg, firstOrNil(data))
}

func (l *Logger) Progress(msg string, data interface{}) {
	l.log(PROGRESS, msg, data)
}

// firstOrNil returns the first element of data if present, nil otherwise
func firstOrNil(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

// SkuSkipped logs a catalog SKU that was dropped during admission
func (l *Logger) SkuSkipped(sku, instanceType, reason string, extra map[string]interface{}) {
	data := map[string]interface{}{
		"sku":           sku,
		"instance_type": instanceType,
		"reason":        reason,
	}
	for k, v := range extra {
		data[k] = v
	}
	l.Warn("Ignoring catalog SKU", data)
}

// RunStart logs the beginning of a pricing run
func (l *Logger) RunStart(catalogSource, capacitySource string) {
	l.Info("Starting pricing run", map[string]interface{}{
		"catalog":  catalogSource,
		"capacity": capacitySource,
	})
}

// RunComplete logs the end of a pricing run
func (l *Logger) RunComplete(records int, destination string) {
	l.Info("Pricing run complete", map[string]interface{}{
		"instance_types": records,
		"destination":    destination,
	})
}

// Default logger methods
func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, err error, data ...interface{}) {
	defaultLogger.Error(msg, err, data...)
}

func Progress(msg string, data ...interface{}) {
	defaultLogger.Progress(msg, firstOrNil(data))
}

func SkuSkipped(sku, instanceType, reason string, extra map[string]interface{}) {
	defaultLogger.SkuSkipped(sku, instanceType, reason, extra)
}

func RunStart(catalogSource, capacitySource string) {
	defaultLogger.RunStart(catalogSource, capacitySource)
}

func RunComplete(records int, destination string) {
	defaultLogger.RunComplete(records, destination)
}
