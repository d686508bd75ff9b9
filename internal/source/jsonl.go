package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/model"
	"golang.org/x/term"
)

// ErrNoInput is returned when reading stdin that is attached to a terminal.
var ErrNoInput = errors.New("no input: stdin is a terminal")

// JSONLines reads wire records from a file or stdin.
type JSONLines struct {
	// Path is the input file; "" or "-" means stdin.
	Path string
	// Pace sleeps between records when not replaying.
	Pace time.Duration
	// Replay sleeps for the timestamp_ms difference between records.
	Replay bool
	// ReplayMaxSleep caps a single replay sleep; zero means no cap.
	ReplayMaxSleep time.Duration
	// In overrides the input reader.
	In io.Reader
}

// Run decodes records until EOF. Malformed lines are skipped. Cancelling ctx
// returns promptly even while a read is still pending.
func (j *JSONLines) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
	r, err := j.open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go scanLines(r, lines, readErr, stop)

	var prevTs *float64
	line := 0
	for {
		var raw []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					return fmt.Errorf("failed to read events: %w", err)
				}
				return nil
			}
			raw = next
		}
		line++
		if len(raw) == 0 {
			continue
		}
		rec, err := DecodeRecord(raw)
		if err != nil {
			slog.Warn("skipping malformed event", "line", line, "err", err)
			continue
		}
		if j.Replay {
			if rec.TimestampMs == nil {
				return fmt.Errorf("replay enabled but record %d has no timestamp_ms", line)
			}
			if prevTs != nil {
				wait := time.Duration((*rec.TimestampMs - *prevTs) * float64(time.Millisecond))
				if j.ReplayMaxSleep > 0 && wait > j.ReplayMaxSleep {
					wait = j.ReplayMaxSleep
				}
				if !sleepCtx(ctx, wait) {
					return ctx.Err()
				}
			}
			prevTs = rec.TimestampMs
		}
		if !emit(rec.Event()) {
			return ctx.Err()
		}
		if !j.Replay && j.Pace > 0 {
			if !sleepCtx(ctx, j.Pace) {
				return ctx.Err()
			}
		}
	}
}

// scanLines reads lines off r until EOF or stop. A read that never returns
// only parks this goroutine; Run has already moved on.
func scanLines(r io.Reader, lines chan<- []byte, readErr chan<- error, stop <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := append([]byte(nil), scanner.Bytes()...)
		select {
		case lines <- raw:
		case <-stop:
			readErr <- nil
			return
		}
	}
	readErr <- scanner.Err()
}

func (j *JSONLines) open() (io.ReadCloser, error) {
	if j.In != nil {
		if rc, ok := j.In.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(j.In), nil
	}
	if j.Path != "" && j.Path != "-" {
		f, err := os.Open(j.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open events: %w", err)
		}
		return f, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNoInput
	}
	return os.Stdin, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
