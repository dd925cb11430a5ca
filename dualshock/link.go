package dualshock

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3/cpu"
)

// Pins are the lines wired to the controller port. Ack is optional.
type Pins struct {
	Clock     gpio.PinOut
	Command   gpio.PinOut
	Attention gpio.PinOut
	Data      gpio.PinIn
	Ack       gpio.PinIn
}

// Timing holds the protocol delays. A zero value disables a delay.
type Timing struct {
	// AttentionSettle is held after attention goes low.
	AttentionSettle time.Duration
	// ClockHalfPeriod is held after each clock edge.
	ClockHalfPeriod time.Duration
	// ByteGap is held after every byte of an exchange.
	ByteGap time.Duration
	// Release is held after attention goes high, before the next exchange.
	Release time.Duration
}

// PS2Timing returns the delays a PlayStation 2 console uses. It is the
// default of New.
func PS2Timing() Timing {
	return Timing{
		AttentionSettle: 15 * time.Microsecond,
		ClockHalfPeriod: 1 * time.Microsecond,
		ByteGap:         15 * time.Microsecond,
		Release:         10 * time.Millisecond,
	}
}

// PS1Timing returns the slower delays of a PlayStation 1 console, for pads
// that do not keep up with PS2Timing.
func PS1Timing() Timing {
	return Timing{
		AttentionSettle: 50 * time.Microsecond,
		ClockHalfPeriod: 2 * time.Microsecond,
		ByteGap:         15 * time.Microsecond,
		Release:         16 * time.Millisecond,
	}
}

var errFrameTooLong = errors.New("frame longer than response buffer")

// spinLimit is the longest delay that is busy-waited instead of slept.
const spinLimit = 500 * time.Microsecond

func wait(d time.Duration) {
	if d <= 0 {
		return
	}
	if d < spinLimit {
		cpu.Nanospin(d)
		return
	}
	time.Sleep(d)
}

// readErrer is implemented by inputs whose Read can fail, like the pins of a
// USB bridge. Read itself has no error return.
type readErrer interface {
	Err() error
}

type link struct {
	pins   Pins
	timing Timing
}

func level(b bool) gpio.Level {
	if b {
		return gpio.High
	}
	return gpio.Low
}

// transferByte clocks out one byte on the command line while sampling the
// data line, both least significant bit first.
func (l *link) transferByte(out byte) (byte, error) {
	var in byte

	for i := 0; i < 8; i++ {
		if err := l.pins.Command.Out(level(out&1 != 0)); err != nil {
			return 0, err
		}
		out >>= 1

		if err := l.pins.Clock.Out(gpio.Low); err != nil {
			return 0, err
		}
		wait(l.timing.ClockHalfPeriod)

		if err := l.pins.Clock.Out(gpio.High); err != nil {
			return 0, err
		}
		wait(l.timing.ClockHalfPeriod)

		in >>= 1
		if l.pins.Data.Read() == gpio.High {
			in |= 0x80
		}
		if e, ok := l.pins.Data.(readErrer); ok {
			if err := e.Err(); err != nil {
				return 0, err
			}
		}
	}

	return in, nil
}

// exchange runs one attention cycle. Bytes past the end of frame are sent as
// zero, the response always has ResponseLen entries.
func (l *link) exchange(frame []byte) (Response, error) {
	var resp Response

	if len(frame) > ResponseLen {
		return resp, errFrameTooLong
	}

	if err := l.pins.Attention.Out(gpio.Low); err != nil {
		return resp, err
	}
	wait(l.timing.AttentionSettle)

	var err error
	for i := range resp {
		var cmd byte
		if i < len(frame) {
			cmd = frame[i]
		}

		if resp[i], err = l.transferByte(cmd); err != nil {
			break
		}
		wait(l.timing.ByteGap)
	}

	/* Always release the pad, even after a failed transfer */
	if errRelease := l.pins.Attention.Out(gpio.High); err == nil {
		err = errRelease
	}
	wait(l.timing.Release)

	return resp, err
}
