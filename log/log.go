// Package log provides component-scoped logging for the recording core.
//
// Every line is rendered as "timestamp | LEVEL | component | message" both on
// the console and in a per-component rotating file under the log directory.
// The GUI shell consumes the console stream of the child process verbatim.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "15:04:05"

var (
	logMu      sync.Mutex
	logReady   bool
	dir        string
	level      = zerolog.InfoLevel
	pid        int
	components map[string]*zerolog.Logger
	rotators   []*lumberjack.Logger

	transcriptFile *os.File
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolutize(flagPath)
	}

	// Priority 2: DICTATIONER_LOG_PATH environment variable
	if envPath := os.Getenv("DICTATIONER_LOG_PATH"); envPath != "" {
		return absolutize(envPath)
	}

	// Priority 3: default OS-specific location
	return getDefaultDir()
}

func absolutize(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// SetLevel applies a settings-file level name. Unknown names keep the
// current level.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()
	components = make(map[string]*zerolog.Logger)
	rotators = nil

	var err error
	transcriptFile, err = os.OpenFile(filepath.Join(dir, "transcript.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if transcriptFile != nil {
		transcriptFile.Close()
		transcriptFile = nil
	}
	for _, r := range rotators {
		r.Close()
	}
	rotators = nil
	components = nil
	logReady = false
}

// lineWriter renders the fixed "ts | LEVEL | component | message" layout.
func lineWriter(out io.Writer, component string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: timeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FormatTimestamp: func(i any) string {
			return fmt.Sprintf("%v |", i)
		},
		FormatLevel: func(i any) string {
			return fmt.Sprintf("%-8s|", strings.ToUpper(fmt.Sprintf("%v", i)))
		},
		FormatMessage: func(i any) string {
			return fmt.Sprintf("%-10s | %v", component, i)
		},
	}
}

// Component returns a logger scoped to one component name. Each component
// writes to the console and, after Init, to its own size-rotated file in
// the log directory. The pointer return keeps the event chain callable on
// the result directly.
func Component(name string) *zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()

	if logReady {
		if lg, ok := components[name]; ok {
			return lg
		}
	}

	writers := []io.Writer{lineWriter(os.Stdout, name)}
	if logReady {
		rot := &lumberjack.Logger{
			Filename:   filepath.Join(dir, name+".log"),
			MaxSize:    5, // megabytes
			MaxBackups: 3,
		}
		rotators = append(rotators, rot)
		writers = append(writers, lineWriter(rot, name))
	}

	lg := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	if logReady {
		components[name] = &lg
	}
	return &lg
}

// TranscriptionText appends one transcript line to transcript.log.
func TranscriptionText(text string) {
	logMu.Lock()
	defer logMu.Unlock()
	if !logReady || transcriptFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcriptFile.WriteString(line)
}
