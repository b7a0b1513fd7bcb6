package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// checkLoop reads one statement per line and answers ok or error. It halts on
// end of input, so closing stdin shuts the process down.
const checkLoop = `repeat, read_line_to_string(user_input, L), ` +
	`( L == end_of_file -> halt ; ` +
	`( catch(term_string(_, L), _, fail) -> writeln(ok) ; writeln(error) ), ` +
	`flush_output, fail )`

const shutdownGrace = time.Second

// Process checks syntax with a long-lived swipl subprocess. It starts on the
// first check and is restarted after a fault. Calls are serialized.
type Process struct {
	mu sync.Mutex

	path    string
	args    []string
	timeout time.Duration
	logger  *zap.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	answers chan string
	wg      sync.WaitGroup
	closed  bool
}

// NewProcess returns a Process that runs the swipl binary at path.
func NewProcess(path string, timeout time.Duration, logger *zap.Logger) *Process {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Process{
		path:    path,
		args:    []string{"-q", "--no-tty", "-g", checkLoop, "-t", "halt"},
		timeout: timeout,
		logger:  logger,
	}
}

// CheckSyntax implements Checker.
func (p *Process) CheckSyntax(ctx context.Context, statement string) bool {
	line := strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(statement))
	if line == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn("swipl checker used after close")
		return false
	}
	if err := p.startLocked(); err != nil {
		p.logger.Warn("failed to start swipl", zap.String("path", p.path), zap.Error(err))
		return false
	}

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		p.logger.Warn("failed to write to swipl", zap.Error(err))
		_ = p.stopLocked(true)
		return false
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case answer, ok := <-p.answers:
		if !ok {
			p.logger.Warn("swipl exited unexpectedly")
			_ = p.stopLocked(true)
			return false
		}
		return answer == "ok"
	case <-timer.C:
		p.logger.Warn("swipl check timed out", zap.Duration("timeout", p.timeout))
		_ = p.stopLocked(true)
		return false
	case <-ctx.Done():
		p.logger.Warn("swipl check cancelled", zap.Error(ctx.Err()))
		_ = p.stopLocked(true)
		return false
	}
}

// Close stops the subprocess. Later checks return false.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.stopLocked(false)
}

func (p *Process) startLocked() error {
	if p.cmd != nil {
		return nil
	}
	if p.path == "" {
		return fmt.Errorf("empty swipl path")
	}

	cmd := exec.Command(p.path, p.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command %s: %w", p.path, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.answers = make(chan string, 1)

	p.wg.Add(2)
	go p.readStdout(stdout, p.answers)
	go p.readStderr(stderr)

	p.logger.Debug("swipl started", zap.Int("pid", cmd.Process.Pid))
	return nil
}

// stopLocked ends the subprocess and waits for its readers. With kill the
// process is terminated at once; otherwise it gets shutdownGrace to halt on
// end of input.
func (p *Process) stopLocked(kill bool) error {
	if p.cmd == nil {
		return nil
	}
	_ = p.stdin.Close()
	if kill {
		_ = p.cmd.Process.Kill()
	}

	exited := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(shutdownGrace):
		p.logger.Warn("swipl did not exit after stdin closed, killing")
		_ = p.cmd.Process.Kill()
		<-exited
	}

	err := p.cmd.Wait()
	p.logger.Debug("swipl stopped", zap.Bool("killed", kill))
	p.cmd, p.stdin, p.answers = nil, nil, nil
	if kill {
		return nil
	}
	return err
}

func (p *Process) readStdout(r io.Reader, answers chan<- string) {
	defer p.wg.Done()
	defer close(answers)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case answers <- line:
		default:
			p.logger.Debug("dropping unexpected swipl output", zap.String("line", line))
		}
	}
}

func (p *Process) readStderr(r io.Reader) {
	defer p.wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.logger.Debug("swipl stderr", zap.String("line", scanner.Text()))
	}
}
