package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
)

// DefaultKillGrace is the window between the graceful terminate signal and
// the forced kill of a cancelled child process
const DefaultKillGrace = 3 * time.Second

const scannerBufferLimit = 1024 * 1024

// ProcessSupervisor owns the lifecycle of one external downloader process:
// it spawns the process from an argument vector (never a shell-interpreted
// string), streams both output pipes line-by-line into the parser, relays
// events in line-emission order, and enforces cancellation.
//
// There is deliberately no idle-timeout watchdog: external tools can stall
// legitimately on slow networks, so only user cancellation or process exit
// produces a terminal result.
type ProcessSupervisor struct {
	parser    domain.LineParser
	killGrace time.Duration
	logger    *zap.Logger
}

// NewProcessSupervisor creates a supervisor. killGrace <= 0 falls back to
// DefaultKillGrace.
func NewProcessSupervisor(parser domain.LineParser, killGrace time.Duration, logger *zap.Logger) *ProcessSupervisor {
	if killGrace <= 0 {
		killGrace = DefaultKillGrace
	}
	return &ProcessSupervisor{
		parser:    parser,
		killGrace: killGrace,
		logger:    logger,
	}
}

// Run executes the process and blocks until it reaches a terminal result.
// Both stdout and stderr feed the parser: yt-dlp prints its progress on
// stdout, but the ffmpeg conversion status lines (frame=... time=...) arrive
// on stderr. Events are delivered synchronously relative to the lines that
// produced them; consecutive identical downloading percentages are coalesced
// to reduce subscriber churn. stderr is additionally captured in full and
// attached to a Failed result. Cancelling ctx terminates the child (graceful
// signal first, forced kill after the grace period) and yields Cancelled —
// returned only once the child has actually exited.
func (s *ProcessSupervisor) Run(ctx context.Context, bin string, args []string, onEvent domain.ProgressCallback) domain.TerminalResult {
	cmd := exec.Command(bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.Failed(-1, "", fmt.Errorf("failed to open stdout pipe: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.Failed(-1, "", fmt.Errorf("failed to open stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return domain.Failed(-1, "", fmt.Errorf("failed to start %s: %w", bin, err))
	}

	if s.logger != nil {
		s.logger.Debug("Process started",
			zap.String("bin", bin),
			zap.Int("pid", cmd.Process.Pid))
	}

	// Wake-on-cancel: the scanners below block on reads, so a watcher
	// goroutine handles termination. Closing exited stops the watcher once
	// the process is gone.
	exited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.terminate(cmd, exited)
		case <-exited:
		}
	}()

	// The parser and the coalescing state are shared by both pipe readers,
	// so emission is serialized. Within each pipe, events keep line order.
	var emitMu sync.Mutex
	lastPercent := -1.0
	handleLine := func(raw string) {
		line := strings.TrimSpace(raw)
		if line == "" {
			return
		}

		emitMu.Lock()
		defer emitMu.Unlock()

		event := s.parser.ParseLine(line)
		if event == nil {
			return
		}
		if event.Phase == domain.PhaseDownloading && event.HasPercent() {
			if *event.Percent == lastPercent {
				return
			}
			lastPercent = *event.Percent
		}
		if onEvent != nil {
			onEvent(*event)
		}
	}

	// stderr reader: every line is kept for the Failed diagnostic and also
	// offered to the parser
	var stderrBuf bytes.Buffer
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), scannerBufferLimit)
		for scanner.Scan() {
			line := scanner.Text()
			stderrBuf.WriteString(line)
			stderrBuf.WriteByte('\n')
			handleLine(line)
		}
		if err := scanner.Err(); err != nil {
			if s.logger != nil {
				s.logger.Warn("Stopped scanning process stderr", zap.Error(err))
			}
			// Keep draining so the child never blocks on a full pipe, and
			// keep the text for diagnostics
			io.Copy(&stderrBuf, stderr)
		}
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), scannerBufferLimit)
	for scanner.Scan() {
		handleLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if s.logger != nil {
			s.logger.Warn("Stopped scanning process stdout", zap.Error(err))
		}
		io.Copy(io.Discard, stdout)
	}

	readers.Wait()
	waitErr := cmd.Wait()
	close(exited)

	if ctx.Err() != nil {
		if s.logger != nil {
			s.logger.Info("Process cancelled", zap.String("bin", bin))
		}
		return domain.Cancelled()
	}

	if waitErr != nil {
		exitCode := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		errText := strings.TrimSpace(stderrBuf.String())
		if s.logger != nil {
			s.logger.Error("Process failed",
				zap.String("bin", bin),
				zap.Int("exit_code", exitCode),
				zap.String("stderr", errText))
		}
		return domain.Failed(exitCode, errText, fmt.Errorf("%s exited with code %d", bin, exitCode))
	}

	return domain.Completed()
}

// terminate asks the child to exit, then kills it after the grace period
func (s *ProcessSupervisor) terminate(cmd *exec.Cmd, exited <-chan struct{}) {
	if cmd.Process == nil {
		return
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery is unsupported on some platforms; fall through to kill
		cmd.Process.Kill()
		return
	}

	select {
	case <-exited:
	case <-time.After(s.killGrace):
		if s.logger != nil {
			s.logger.Warn("Process did not exit within grace period, killing",
				zap.Int("pid", cmd.Process.Pid))
		}
		cmd.Process.Kill()
	}
}
