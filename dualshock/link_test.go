package dualshock

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestTransferByteLoopback(t *testing.T) {
	for _, b := range []byte{0xa5, 0x00, 0xff, 0x01, 0x80, 0x5a} {
		s := newSimPad()
		s.loopback = true
		l := link{pins: s.pins()}

		got, err := l.transferByte(b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != b {
			t.Errorf("loopback of 0x%02x returned 0x%02x", b, got)
		}
		if s.clk.Read() != gpio.High {
			t.Errorf("clock does not idle high after transfer")
		}
	}
}

func TestTransferByteReceivesLSBFirst(t *testing.T) {
	s := newSimPad()
	s.queue(Response{0x01, 0x80})
	l := link{pins: s.pins()}

	resp, err := l.exchange(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp[0] != 0x01 || resp[1] != 0x80 {
		t.Errorf("expected 01 80, got %02x %02x", resp[0], resp[1])
	}
}

func TestExchangePadding(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"Poll", []byte(cmdPoll)},
		{"EnterConfig", []byte(cmdEnterConfig)},
		{"SetMode", setModeFrame(true, true)},
		{"ExitConfig", []byte(cmdExitConfig)},
		{"Empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimPad()
			want := Response{0xff, 0x73, 0x5a, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
			s.queue(want)
			l := link{pins: s.pins()}

			got, err := l.exchange(tt.frame)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("expected response %x, got %x", want, got)
			}

			sent := s.sent()
			if len(sent) != 1 {
				t.Fatalf("expected 1 exchange, got %d", len(sent))
			}

			expected := make([]byte, ResponseLen)
			copy(expected, tt.frame)
			if !bytes.Equal(sent[0], expected) {
				t.Errorf("expected wire bytes %x, got %x", expected, sent[0])
			}

			if s.att.Read() != gpio.High {
				t.Errorf("attention not released")
			}
		})
	}
}

func TestExchangeFrameTooLong(t *testing.T) {
	s := newSimPad()
	l := link{pins: s.pins()}

	_, err := l.exchange(make([]byte, ResponseLen+1))
	if !errors.Is(err, errFrameTooLong) {
		t.Errorf("expected errFrameTooLong, got %v", err)
	}
	if len(s.sent()) != 0 {
		t.Errorf("oversized frame reached the wire")
	}
}

func TestExchangeReleasesAttentionOnError(t *testing.T) {
	s := newSimPad()
	s.cmd.err = errLine
	l := link{pins: s.pins()}

	_, err := l.exchange([]byte(cmdPoll))
	if !errors.Is(err, errLine) {
		t.Errorf("expected line error, got %v", err)
	}
	if s.att.Read() != gpio.High {
		t.Errorf("attention not released after failure")
	}
}

// failingInput is a data line whose reads report a transport error.
type failingInput struct {
	*gpiotest.Pin
	err error
}

func (f *failingInput) Err() error {
	return f.err
}

func TestExchangeReportsReadError(t *testing.T) {
	s := newSimPad()
	s.queue(Response{0xff, 0x41, 0x5a})
	pins := s.pins()
	pins.Data = &failingInput{Pin: s.dat, err: errLine}
	l := link{pins: pins}

	_, err := l.exchange([]byte(cmdPoll))
	if !errors.Is(err, errLine) {
		t.Errorf("expected read error, got %v", err)
	}
	if s.att.Read() != gpio.High {
		t.Errorf("attention not released after failed read")
	}

	pins.Data = &failingInput{Pin: s.dat}
	l = link{pins: pins}
	if _, err := l.exchange([]byte(cmdPoll)); err != nil {
		t.Errorf("unexpected error without read failure: %v", err)
	}
}

func TestTimingPresets(t *testing.T) {
	ps2 := PS2Timing()
	ps2.Release = 0

	if PS2Timing().Release != 10*time.Millisecond {
		t.Errorf("preset changed through a returned copy")
	}
	if PS1Timing().AttentionSettle <= PS2Timing().AttentionSettle {
		t.Errorf("PS1 timing should be slower than PS2")
	}

	p, err := New(newSimPad().pins(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.link.timing != PS2Timing() {
		t.Errorf("default timing is %+v", p.link.timing)
	}
}
