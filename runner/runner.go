package runner

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Shell returns the argv prefix used to run a command line written for
// platform. Unrecognised platforms use the host's default shell.
func Shell(platform string) []string {
	p := strings.ToLower(platform)
	switch {
	case strings.Contains(p, "powershell"), strings.Contains(p, "pwsh"):
		return []string{"pwsh", "-NoProfile", "-Command"}
	case p == "cmd", strings.Contains(p, "windows"):
		return []string{"cmd", "/C"}
	case runtime.GOOS == "windows" && p == "":
		return []string{"cmd", "/C"}
	default:
		return []string{"sh", "-c"}
	}
}

// Output is one line of a running command, or the final Done marker.
type Output struct {
	Line   string
	IsErr  bool
	Done   bool
	ErrMsg string
}

// Run executes line under the shell for platform and streams its output to
// out, closing out when finished. Cancelling ctx kills the process.
func Run(ctx context.Context, platform, line string, out chan<- Output) {
	defer close(out)

	argv := append(Shell(platform), line)
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stdout, err := c.StdoutPipe()
	if err != nil {
		out <- Output{Done: true, ErrMsg: err.Error()}
		return
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		out <- Output{Done: true, ErrMsg: err.Error()}
		return
	}

	if err := c.Start(); err != nil {
		out <- Output{Done: true, ErrMsg: err.Error()}
		return
	}

	var wg sync.WaitGroup
	stream := func(r io.Reader, isErr bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- Output{Line: scanner.Text(), IsErr: isErr}
		}
	}
	wg.Add(2)
	go stream(stdout, false)
	go stream(stderr, true)
	wg.Wait()

	if err := c.Wait(); err != nil {
		out <- Output{Done: true, ErrMsg: err.Error()}
		return
	}
	out <- Output{Done: true}
}
