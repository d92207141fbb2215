// Package util holds small platform helpers for the command line entry point.
package util

import (
	"bufio"
	"fmt"
	"io"
)

// PauseOnExit keeps a console window open until the user presses enter. It
// only waits when the process was started by double-clicking it, otherwise
// the window would vanish together with the error message.
func PauseOnExit(in io.Reader, out io.Writer) {
	if !StartedFromGUI() {
		return
	}
	fmt.Fprintln(out, "Press enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
