package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Exit codes a speech command uses to report why it stopped, taken from
// sysexits.h.
const (
	ExitUnavailable = 69 // EX_UNAVAILABLE: network or service down
	ExitNoPerm      = 77 // EX_NOPERM: microphone access denied
)

// maxTranscriptLine bounds one line of recognizer output.
const maxTranscriptLine = 1 << 20

// CommandRecognizer runs an external speech-to-text program. Each
// non-empty stdout line is one final transcript.
type CommandRecognizer struct {
	Name string
	Args []string
}

// NewCommandRecognizer splits a command line such as the voiceCommand
// setting into program and arguments.
func NewCommandRecognizer(line string) *CommandRecognizer {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &CommandRecognizer{}
	}
	return &CommandRecognizer{Name: fields[0], Args: fields[1:]}
}

func (c *CommandRecognizer) Run(ctx context.Context, onFinal func(string)) error {
	if c.Name == "" {
		return &RecognitionError{Kind: KindStartFailed, Err: errors.New("no speech command configured")}
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &RecognitionError{Kind: KindStartFailed, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &RecognitionError{Kind: KindStartFailed, Err: err}
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTranscriptLine)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			onFinal(line)
		}
	}
	if err := scanner.Err(); err != nil {
		// Nothing drains stdout any more; stop the recognizer.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if ctx.Err() != nil {
			return nil
		}
		return &RecognitionError{Kind: KindOther, Err: fmt.Errorf("reading transcript: %w", err)}
	}

	err = cmd.Wait()
	if err == nil || ctx.Err() != nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.New(msg)
		}
		switch exitErr.ExitCode() {
		case ExitNoPerm:
			return &RecognitionError{Kind: KindPermissionDenied, Err: err}
		case ExitUnavailable:
			return &RecognitionError{Kind: KindNetwork, Err: err}
		}
	}
	return &RecognitionError{Kind: KindOther, Err: err}
}
