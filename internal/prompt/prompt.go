// Package prompt asks the operator to confirm destructive or public-exposure actions.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"platformcli/internal/logging"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// ConfirmFunc asks a yes/no question and reports the answer
type ConfirmFunc func(prompt string) bool

// AlwaysYes confirms every question without asking
func AlwaysYes(string) bool { return true }

// AlwaysNo declines every question without asking
func AlwaysNo(string) bool { return false }

// Terminal returns a ConfirmFunc that writes the question to out and reads
// one line from in. Only "y" and "yes" confirm; EOF and read errors decline.
func Terminal(in io.Reader, out io.Writer) ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err != io.EOF {
				logging.Logger().Warn("failed to read confirmation", zap.Error(err))
			}
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

// Stdin returns a Terminal confirmation bound to the process streams
func Stdin(out io.Writer) ConfirmFunc {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		logging.Logger().Debug("stdin is not a terminal, confirmations read from input stream")
	}
	return Terminal(os.Stdin, out)
}
