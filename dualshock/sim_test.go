package dualshock

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// simPad emulates the pad side of the wire. It shifts a response bit onto
// the data line on every falling clock edge and latches the command line on
// every rising edge, while attention is low.
type simPad struct {
	mu sync.Mutex

	clk *watchPin
	cmd *watchPin
	att *watchPin
	dat *gpiotest.Pin

	// loopback mirrors the command line to the data line instead of
	// answering with queued responses.
	loopback bool

	responses []Response
	frames    [][]byte

	active  bool
	resp    Response
	frame   []byte
	byteIdx int
	bitIdx  int
	inByte  byte
}

// watchPin is an output that reports level changes to the simulator.
type watchPin struct {
	gpiotest.Pin

	mu    sync.Mutex
	lvl   gpio.Level
	onOut func(l gpio.Level)
	err   error
}

func (w *watchPin) Out(l gpio.Level) error {
	if w.err != nil {
		return w.err
	}

	w.mu.Lock()
	changed := w.lvl != l
	w.lvl = l
	w.mu.Unlock()

	if changed && w.onOut != nil {
		w.onOut(l)
	}
	return nil
}

func (w *watchPin) Read() gpio.Level {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lvl
}

func newSimPad() *simPad {
	s := &simPad{
		dat: &gpiotest.Pin{N: "DAT"},
	}

	s.clk = &watchPin{Pin: gpiotest.Pin{N: "CLK"}, lvl: gpio.High, onOut: s.clock}
	s.cmd = &watchPin{Pin: gpiotest.Pin{N: "CMD"}}
	s.att = &watchPin{Pin: gpiotest.Pin{N: "ATT"}, lvl: gpio.High, onOut: s.attention}

	return s
}

func (s *simPad) pins() Pins {
	return Pins{
		Clock:     s.clk,
		Command:   s.cmd,
		Attention: s.att,
		Data:      s.dat,
	}
}

func (s *simPad) queue(resp ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses = append(s.responses, resp...)
}

func (s *simPad) sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]byte{}, s.frames...)
}

func (s *simPad) attention(l gpio.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l == gpio.Low {
		s.active = true
		s.frame = nil
		s.byteIdx, s.bitIdx, s.inByte = 0, 0, 0
		s.resp = Response{}
		if len(s.responses) > 0 {
			s.resp = s.responses[0]
			s.responses = s.responses[1:]
		}
		return
	}

	if s.active {
		s.frames = append(s.frames, s.frame)
	}
	s.active = false
}

func (s *simPad) clock(l gpio.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active && !s.loopback {
		return
	}

	cmd := s.cmd.Read()

	if l == gpio.Low {
		out := cmd
		if !s.loopback && s.byteIdx < ResponseLen {
			out = level(s.resp[s.byteIdx]&(1<<s.bitIdx) != 0)
		}
		s.dat.Out(out)
		return
	}

	if cmd == gpio.High {
		s.inByte |= 1 << s.bitIdx
	}
	s.bitIdx++
	if s.bitIdx == 8 {
		s.frame = append(s.frame, s.inByte)
		s.byteIdx++
		s.bitIdx, s.inByte = 0, 0
	}
}

var errLine = errors.New("line failure")
