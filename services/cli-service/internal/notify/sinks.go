package notify

import (
	"io"
	"sync"

	"github.com/fatih/color"

	"AssistantHubPlatform/pkg/logger"
)

// TerminalSink печатает уведомления в терминал
type TerminalSink struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Level]*color.Color
	marks  map[Level]string
}

// NewTerminalSink создает вывод уведомлений; colors=false печатает без ANSI кодов
func NewTerminalSink(out io.Writer, colors bool) *TerminalSink {
	styles := map[Level]*color.Color{
		LevelSuccess: color.New(color.FgGreen),
		LevelError:   color.New(color.FgRed, color.Bold),
		LevelInfo:    color.New(color.FgCyan),
	}
	for _, style := range styles {
		if colors {
			style.EnableColor()
		} else {
			style.DisableColor()
		}
	}

	return &TerminalSink{
		out:    out,
		styles: styles,
		marks: map[Level]string{
			LevelSuccess: "✓",
			LevelError:   "✗",
			LevelInfo:    "•",
		},
	}
}

// Notify печатает уведомление
func (s *TerminalSink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	style, ok := s.styles[n.Level]
	if !ok {
		style = s.styles[LevelInfo]
	}
	mark, ok := s.marks[n.Level]
	if !ok {
		mark = s.marks[LevelInfo]
	}
	style.Fprintf(s.out, "%s %s\n", mark, n.Message)
}

// LoggerSink пишет уведомления в структурированный лог
type LoggerSink struct {
	logger logger.Logger
}

// NewLoggerSink создает запись уведомлений в лог
func NewLoggerSink(log logger.Logger) *LoggerSink {
	return &LoggerSink{logger: log}
}

// Notify пишет уведомление в лог
func (s *LoggerSink) Notify(n Notification) {
	fields := []logger.Field{
		logger.String("level", string(n.Level)),
		logger.Int("id", int(n.ID)),
	}
	if n.Level == LevelError {
		s.logger.Warn(n.Message, fields...)
		return
	}
	s.logger.Debug(n.Message, fields...)
}
