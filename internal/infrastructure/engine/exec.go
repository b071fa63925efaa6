package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/doeshing/jarvish/internal/domain"
)

// runPipelineExec executes one pipeline of external commands.
//
// A single command without redirections gets a full PTY session when the
// shell is on a terminal, so editors and pagers behave; everything else
// runs in capture mode, where the final stage's stdout and stderr are teed
// to the terminal and into buffers for the black box.
func (e *Engine) runPipelineExec(ctx context.Context, p domain.Pipeline) domain.CommandResult {
	cmds := p.Commands

	if len(cmds) == 1 && len(cmds[0].Redirects) == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		if IsInteractive(cmds[0].Name) || term.IsTerminal(int(os.Stdin.Fd())) {
			res, err := e.runPTY(cmds[0])
			if err == nil {
				return res
			}
			e.log.Debug("PTY session unavailable, falling back to capture mode",
				zap.String("command", cmds[0].Name), zap.Error(err))
		}
	}

	return e.runCaptured(ctx, cmds)
}

// runCaptured wires N-1 anonymous pipes between the stages, tees the final
// stage's streams, and waits for everything. Interior stages share one
// stderr pipe whose bytes are prepended to the final stage's stderr.
func (e *Engine) runCaptured(ctx context.Context, cmds []domain.SimpleCommand) domain.CommandResult {
	n := len(cmds)

	var midR, midW *os.File
	if n > 1 {
		var err error
		midR, midW, err = os.Pipe()
		if err != nil {
			return e.emit(domain.Failure(fmt.Sprintf("jarvish: pipe: %v\n", err), 1))
		}
	}

	var children []*exec.Cmd
	var prevRead *os.File
	pgid := 0

	abort := func() {
		for _, c := range children {
			unix.Kill(-c.Process.Pid, unix.SIGKILL)
			c.Wait()
		}
		closeFiles(prevRead, midR, midW)
	}

	for i, sc := range cmds {
		last := i == n-1

		cmd := exec.Command(sc.Name, sc.Args...)
		// All stages join one process group so a foreground interrupt
		// reaches the whole pipeline.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

		var stdinFile *os.File
		if prevRead != nil {
			cmd.Stdin = prevRead
		} else {
			f, err := openStdinRedirect(sc.Redirects)
			if err != nil {
				abort()
				return e.emit(domain.Failure(err.Error()+"\n", 1))
			}
			if f != nil {
				cmd.Stdin = f
				stdinFile = f
			} else {
				cmd.Stdin = os.Stdin
			}
		}

		if last {
			redirFile, err := openStdoutRedirect(sc.Redirects)
			if err != nil {
				closeFiles(stdinFile)
				abort()
				return e.emit(domain.Failure(err.Error()+"\n", 1))
			}

			var stdoutR, stdoutW *os.File
			if redirFile != nil {
				// Explicit redirection takes precedence over capture.
				cmd.Stdout = redirFile
			} else {
				stdoutR, stdoutW, err = os.Pipe()
				if err != nil {
					closeFiles(stdinFile, redirFile)
					abort()
					return e.emit(domain.Failure(fmt.Sprintf("jarvish: pipe: %v\n", err), 1))
				}
				cmd.Stdout = stdoutW
			}

			stderrR, stderrW, err := os.Pipe()
			if err != nil {
				closeFiles(stdinFile, redirFile, stdoutR, stdoutW)
				abort()
				return e.emit(domain.Failure(fmt.Sprintf("jarvish: pipe: %v\n", err), 1))
			}
			cmd.Stderr = stderrW

			startErr := cmd.Start()
			closeFiles(stdinFile, prevRead, redirFile, stdoutW, stderrW, midW)
			if startErr != nil {
				closeFiles(stdoutR, stderrR, midR)
				for _, c := range children {
					unix.Kill(-c.Process.Pid, unix.SIGKILL)
					c.Wait()
				}
				return e.emit(spawnError(sc.Name, startErr))
			}

			// One reader task per captured stream, started before the
			// child is awaited, so a full OS pipe can never deadlock.
			var stdoutBuf, stderrBuf, midBuf bytes.Buffer
			g := new(errgroup.Group)
			if stdoutR != nil {
				g.Go(teeStream(stdoutR, os.Stdout, &stdoutBuf))
			}
			g.Go(teeStream(stderrR, os.Stderr, &stderrBuf))
			if midR != nil {
				g.Go(teeStream(midR, os.Stderr, &midBuf))
			}

			if pgid == 0 {
				pgid = cmd.Process.Pid
			}
			code := e.waitForeground(ctx, cmd, pgid)
			for _, c := range children {
				c.Wait()
			}
			if err := g.Wait(); err != nil {
				e.log.Warn("tee reader failed", zap.Error(err))
			}

			midBuf.Write(stderrBuf.Bytes())
			return domain.CommandResult{
				Stdout:   stdoutBuf.String(),
				Stderr:   midBuf.String(),
				ExitCode: code,
			}
		}

		r, w, err := os.Pipe()
		if err != nil {
			closeFiles(stdinFile)
			abort()
			return e.emit(domain.Failure(fmt.Sprintf("jarvish: pipe: %v\n", err), 1))
		}
		cmd.Stdout = w
		cmd.Stderr = midW

		startErr := cmd.Start()
		closeFiles(w, stdinFile, prevRead)
		prevRead = nil
		if startErr != nil {
			closeFiles(r)
			abort()
			return e.emit(spawnError(sc.Name, startErr))
		}
		if pgid == 0 {
			pgid = cmd.Process.Pid
		}
		children = append(children, cmd)
		prevRead = r
	}

	// Unreachable: the loop always returns from the last stage.
	return domain.Failure("jarvish: internal error: empty pipeline\n", 1)
}

// waitForeground waits for the pipeline's final stage while relaying the
// shell's SIGINT (and context cancellation from AI tool calls) to the
// pipeline's process group.
func (e *Engine) waitForeground(ctx context.Context, cmd *exec.Cmd, pgid int) int {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigc:
				unix.Kill(-pgid, unix.SIGINT)
			case <-ctx.Done():
				unix.Kill(-pgid, unix.SIGINT)
				return
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	return exitCode(err)
}

// teeStream copies every byte to the terminal stream and the capture
// buffer, returning at EOF. Byte order per stream is preserved.
func teeStream(r *os.File, terminal io.Writer, buf *bytes.Buffer) func() error {
	return func() error {
		defer r.Close()
		_, err := io.Copy(io.MultiWriter(terminal, buf), r)
		return err
	}
}

// exitCode maps a Wait error to the shell's exit code convention:
// signal-terminated children become 128 + signal number.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return 128 + int(ws.Signal())
			}
			return ws.ExitStatus()
		}
		return ee.ExitCode()
	}
	return 1
}

// spawnError maps a Start failure to 127 (not found) or 126 (not
// executable), the codes an interactive user expects from a shell.
func spawnError(name string, err error) domain.CommandResult {
	reason := err.Error()
	code := 126
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		reason = "command not found"
		code = 127
	} else if errors.Is(err, fs.ErrPermission) {
		reason = "permission denied"
	}
	return domain.Failure(fmt.Sprintf("jarvish: %s: %s\n", name, reason), code)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}
