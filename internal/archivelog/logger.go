package archivelog

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// New builds a *slog.Logger with redaction applied to every record. When
// w is a terminal, output is wrapped with colorable so ANSI sequences
// render correctly on Windows consoles too; when it is redirected to a
// file or pipe, colorization is left to the handler's own plain text.
//
// verbose lowers the level to Debug; otherwise only Warn and above are
// emitted, keeping routine page-by-page progress off stderr unless asked
// for.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = colorable.NewColorable(f)
	}

	handler := NewRedactHandler(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return slog.New(handler)
}

// NewJSON builds a redacting *slog.Logger emitting newline-delimited JSON,
// for piping into log aggregation rather than a terminal.
func NewJSON(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := NewRedactHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return slog.New(handler)
}

// LevelColor returns the ANSI-colored label for a log level: red for
// errors, yellow for warnings, cyan for info, faint below that. No code
// in this module calls it.
func LevelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return color.RedString(level.String())
	case level >= slog.LevelWarn:
		return color.YellowString(level.String())
	case level >= slog.LevelInfo:
		return color.CyanString(level.String())
	default:
		return color.New(color.Faint).Sprint(level.String())
	}
}
