package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mvp-joe/protolink/internal/workspace"
)

// terminalNavigator prints the chosen location on out and prompts on errOut,
// reading the answer from in. Without a prompt every candidate is printed
// and the selection is left to the user.
type terminalNavigator struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	prompt bool
}

func newTerminalNavigator(in io.Reader, out, errOut io.Writer, prompt bool) *terminalNavigator {
	return &terminalNavigator{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		prompt: prompt,
	}
}

func (n *terminalNavigator) Navigate(ctx context.Context, loc workspace.Location) error {
	_, err := fmt.Fprintln(n.out, loc.String())
	return err
}

func (n *terminalNavigator) Pick(ctx context.Context, placeholder string, items []workspace.PickItem) (int, bool, error) {
	if !n.prompt {
		for _, item := range items {
			if _, err := fmt.Fprintln(n.out, item.Location.String()); err != nil {
				return -1, false, err
			}
		}
		return -1, false, nil
	}

	fmt.Fprintln(n.errOut, placeholder)
	for i, item := range items {
		fmt.Fprintf(n.errOut, "  %d) %s (%s)\n", i+1, item.Label, item.Description)
	}
	fmt.Fprintf(n.errOut, "Select [1-%d], empty to cancel: ", len(items))

	line, err := n.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return -1, false, err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return -1, false, nil
	}

	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(items) {
		fmt.Fprintf(n.errOut, "invalid selection %q\n", answer)
		return -1, false, nil
	}
	return choice - 1, true, nil
}

func (n *terminalNavigator) Notify(ctx context.Context, level workspace.NoticeLevel, message string) {
	fmt.Fprintf(n.errOut, "%s: %s\n", level, message)
}
