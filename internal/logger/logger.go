package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const prefix = "smtp-client"

// Options selects where log lines go and how much is written.
type Options struct {
	// Path, when set, appends to a log file in addition to Writer.
	Path string
	// Writer defaults to stderr.
	Writer io.Writer
	// Verbose enables debug output.
	Verbose bool
}

type Logger struct {
	*log.Logger
	file *os.File
}

var nop = &Logger{Logger: log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})}

func (l *Logger) Init(opts Options) error {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %v", err)
		}
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %v", err)
		}
		l.file = file
		w = io.MultiWriter(w, file)
	}

	level := log.WarnLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	l.Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: opts.Path != "",
	})
	return nil
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
