// Package trainer runs the external training process that consumes a job file
package trainer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/platform/logger"
)

const maxLine = 1024 * 1024

// Exec launches Command with "--job <path>" appended
// stdout lines are logged at info and stderr lines at warn
type Exec struct {
	Command []string
	Dir     string
	Env     map[string]string
	Log     *logger.Logger
}

// Train runs the command to completion; a non-zero exit is an upstream error
func (e *Exec) Train(ctx context.Context, jobPath string) error {
	if len(e.Command) == 0 {
		return perr.WithField(perr.InvalidArgf("trainer command is empty"), "trainer.command")
	}
	log := e.Log
	if log == nil {
		log = logger.Named("trainer")
	}

	args := append(append([]string{}, e.Command[1:]...), "--job", jobPath)
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	cmd.Dir = e.Dir
	cmd.Env = os.Environ()
	for k, v := range e.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "trainer: stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "trainer: stderr pipe")
	}

	log.Info().Strs("command", cmd.Args).Str("dir", e.Dir).Msg("trainer: starting")
	if err := cmd.Start(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "trainer: start %s", e.Command[0])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); pump(stdout, func(s string) { log.Info().Str("stream", "stdout").Msg(s) }) }()
	go func() { defer wg.Done(); pump(stderr, func(s string) { log.Warn().Str("stream", "stderr").Msg(s) }) }()
	// pipes must be drained before Wait closes them
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "trainer: canceled")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return perr.Wrapf(err, perr.ErrorCodeUpstream, "trainer: exited with code %d", exitErr.ExitCode())
		}
		return perr.Wrap(err, perr.ErrorCodeUpstream, "trainer: wait")
	}
	log.Info().Msg("trainer: finished")
	return nil
}

func pump(r io.Reader, emit func(string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		emit(sc.Text())
	}
	// a line over maxLine stops the scanner; keep draining so the child never blocks
	_, _ = io.Copy(io.Discard, r)
}
