package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"go.bug.st/serial"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openConsole opens the serial port the state lines are written to. The name
// "-" writes to stdout instead.
func openConsole(name string, baud int) (io.WriteCloser, error) {
	if name == "-" {
		return nopCloser{os.Stdout}, nil
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

func consoleLine(st dualshock.State) string {
	start := 0
	if st.Down(dualshock.ButtonStart) {
		start = 1
	}

	var down []string
	for _, b := range dualshock.Buttons {
		if st.Held(b) {
			down = append(down, b.String())
		}
	}

	held := "-"
	if len(down) > 0 {
		held = strings.Join(down, ",")
	}

	return fmt.Sprintf("start=%d held=%s lx=%d ly=%d rx=%d ry=%d\r\n",
		start, held, st.LeftX(), st.LeftY(), st.RightX(), st.RightY())
}

func writeState(w io.Writer, st dualshock.State) error {
	_, err := io.WriteString(w, consoleLine(st))
	return err
}
