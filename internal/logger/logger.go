// Package logger provides structured JSON logging and run metrics for the sync pipeline.
//
// Log output is produced by zerolog. The package keeps a small facade over it so call
// sites pass a message plus a Fields map, and an optional error for failures:
//
//	logger.Info("page fetched", logger.Fields{
//	    "page": 3,
//	    "events": 25,
//	})
//
//	logger.Error("batch aborted", logger.Fields{"pass": "decks"}, err)
//
// Metrics tracks counters (rows inserted, duplicates skipped), gauges and timings
// for a single run and can be rendered at the end of a command.
package logger

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a config string such as "debug" or "WARN" to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger provides structured logging
type Logger struct {
	zl zerolog.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(LevelInfo, os.Stdout)
)

// New creates a logger writing JSON lines to output. Messages below level are discarded.
func New(level Level, output io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(output).
		Level(level.zerolog()).
		With().
		Timestamp().
		Logger()
	return &Logger{zl: zl}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{zl: l.zl.With().Fields(map[string]interface{}(fields)).Logger()}
}

// Zerolog exposes the underlying zerolog.Logger for libraries that want one.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// SetDefault sets the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.zl.Debug()
	case LevelWarn:
		ev = l.zl.Warn()
	case LevelError:
		ev = l.zl.Error()
	default:
		ev = l.zl.Info()
	}
	if len(fields) > 0 {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(message)
}

// Debug logs detailed diagnostic information.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs general operational information.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a problem that does not stop the current pass.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs a failure together with its error.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	Default().Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}

// Metrics tracks counters, gauges and timings for one run. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

// TimingStats summarizes the recorded durations of one timing.
type TimingStats struct {
	Count   int    `json:"count"`
	Total   string `json:"total"`
	Average string `json:"average"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

// MetricsSnapshot is a point-in-time copy of a Metrics tracker.
type MetricsSnapshot struct {
	Counters map[string]int64       `json:"counters"`
	Gauges   map[string]float64     `json:"gauges"`
	Timings  map[string]TimingStats `json:"timings"`
}

// CounterNames returns the counter names in sorted order.
func (s MetricsSnapshot) CounterNames() []string {
	names := make([]string, 0, len(s.Counters))
	for name := range s.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

// AddCounter increments a counter by delta.
func (m *Metrics) AddCounter(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// SetGauge sets a gauge, overwriting any previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordTiming records one duration measurement.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], duration)
}

// Snapshot returns a deep copy of all metrics with timing statistics computed.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}
	for k, v := range m.gauges {
		snap.Gauges[k] = v
	}
	for name, durations := range m.timings {
		if len(durations) == 0 {
			continue
		}
		var total time.Duration
		lo, hi := durations[0], durations[0]
		for _, d := range durations {
			total += d
			lo = min(lo, d)
			hi = max(hi, d)
		}
		snap.Timings[name] = TimingStats{
			Count:   len(durations),
			Total:   total.String(),
			Average: (total / time.Duration(len(durations))).String(),
			Min:     lo.String(),
			Max:     hi.String(),
		}
	}
	return snap
}

// Reset clears every metric.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.counters)
	clear(m.gauges)
	clear(m.timings)
}

// IncrCounter increments a counter on the default metrics tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// AddCounter adds delta to a counter on the default metrics tracker.
func AddCounter(name string, delta int64) {
	defaultMetrics.AddCounter(name, delta)
}

// SetGauge sets a gauge on the default metrics tracker.
func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

// RecordTiming records a timing on the default metrics tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}

// MetricsSnapshotNow returns a snapshot of the default metrics tracker.
func MetricsSnapshotNow() MetricsSnapshot {
	return defaultMetrics.Snapshot()
}

// ResetMetrics clears the default metrics tracker.
func ResetMetrics() {
	defaultMetrics.Reset()
}
