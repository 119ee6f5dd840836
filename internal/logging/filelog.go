package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DailyFile appends log lines to one file per day, named app_YYYY-MM-DD.log.
// Writes are best-effort: any open or write failure is swallowed so that
// logging can never take a request down with it.
type DailyFile struct {
	dir string

	mu  sync.Mutex
	day string
	f   *os.File
}

// NewDailyFile creates a DailyFile rooted at dir. The directory is created
// lazily on first write.
func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{dir: dir}
}

// WriteLine appends one line to today's file.
func (d *DailyFile) WriteLine(t time.Time, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	day := t.Format("2006-01-02")
	if d.f == nil || d.day != day {
		if d.f != nil {
			d.f.Close()
			d.f = nil
		}
		if err := os.MkdirAll(d.dir, 0o755); err != nil {
			return
		}
		f, err := os.OpenFile(
			filepath.Join(d.dir, "app_"+day+".log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY,
			0o644,
		)
		if err != nil {
			return
		}
		d.f = f
		d.day = day
	}

	d.f.WriteString(line + "\n")
}

// Close releases the current file handle, if any.
func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// fileHandler is a slog.Handler that renders records as
// "[timestamp] [LEVEL] message key=value ..." lines into a DailyFile.
type fileHandler struct {
	file  *DailyFile
	level slog.Level
	attrs []slog.Attr
}

func newFileHandler(file *DailyFile, level slog.Level) *fileHandler {
	return &fileHandler{file: file, level: level}
}

func (h *fileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *fileHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s",
		r.Time.Format("2006-01-02 15:04:05"),
		r.Level.String(),
		r.Message,
	)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	h.file.WriteLine(r.Time, b.String())
	return nil
}

func (h *fileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &fileHandler{file: h.file, level: h.level, attrs: merged}
}

func (h *fileHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; the daily file is a plain line format.
	return h
}
