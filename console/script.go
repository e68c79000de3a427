package console

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/brettbedarf/vfsh/shell"
)

// RunScript submits each line of r to sh, stopping at an "exit" line or the
// end of input. It returns the exit code of the last executed line.
func RunScript(ctx context.Context, sh *shell.Shell, r io.Reader) int {
	logger := util.GetLogger("Console.RunScript")

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}
		sh.Submit(ctx, line)
	}
	if err := sc.Err(); err != nil {
		logger.Error().Err(err).Msg("Reading script failed")
	}
	if err := sh.WaitIdle(ctx); err != nil {
		return shell.ExitInterrupted
	}
	return sh.LastExit()
}
