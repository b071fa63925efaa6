package engine

import (
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/doeshing/jarvish/internal/domain"
)

// runPTY attaches the child to a pseudoterminal and forwards the parent
// terminal's raw-mode I/O bidirectionally until the child exits. Window
// resizes are propagated; terminal mode is restored on every exit path.
//
// PTY executions are not captured: the byte stream is screen-control
// noise, so the result carries only the exit code.
func (e *Engine) runPTY(sc domain.SimpleCommand) (domain.CommandResult, error) {
	cmd := exec.Command(sc.Name, sc.Args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return domain.CommandResult{}, err
	}
	defer ptmx.Close()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	go func() {
		for range winch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				e.log.Debug("failed to propagate window size", zap.Error(err))
			}
		}
	}()
	winch <- unix.SIGWINCH // initial size
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err == nil {
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	done := make(chan struct{})
	go forwardStdin(ptmx, done)

	// EIO when the child closes the slave side is the normal end of stream.
	io.Copy(os.Stdout, ptmx)

	// The interrupt key reaches the child through the PTY line
	// discipline; the shell never traps it here.
	waitErr := cmd.Wait()
	close(done)

	return domain.CommandResult{ExitCode: exitCode(waitErr)}, nil
}

// forwardStdin pumps keystrokes from the real stdin into the PTY master.
// It polls so it can stop promptly when the child exits instead of sitting
// in a blocking read and swallowing the next prompt's first keystroke.
func forwardStdin(ptmx *os.File, done <-chan struct{}) {
	fd := int(os.Stdin.Fd())
	buf := make([]byte, 1024)
	for {
		select {
		case <-done:
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}

		nr, err := unix.Read(fd, buf)
		if nr > 0 {
			if _, werr := ptmx.Write(buf[:nr]); werr != nil {
				return
			}
		}
		if err != nil || nr == 0 {
			return
		}
	}
}
