package history

import (
	"io"
	"os"

	"golang.org/x/term"
)

const terminalWidthBackup = 80

// Options controls report rendering.
type Options struct {
	// Width bounds the segment name column and sparkline. Zero means unbounded.
	Width int
	// Color enables styled headings.
	Color bool
}

// OptionsFor sizes output to w when it is a terminal.
func OptionsFor(w io.Writer) Options {
	file, ok := w.(*os.File)
	if !ok {
		return Options{}
	}
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return Options{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = terminalWidthBackup
	}
	return Options{Width: width, Color: os.Getenv("NO_COLOR") == ""}
}
