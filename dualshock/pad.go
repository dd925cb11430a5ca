// Package dualshock implements a driver for PlayStation 1/2 controllers
// connected to four GPIO lines. The synchronous serial protocol is bit-banged:
// the host drives clock, command and attention and samples the data line.
// Protocol notes: http://curiousinventor.com/guides/ps2
package dualshock

import (
	"encoding/hex"
	"errors"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

type LogFunc func(format string, params ...interface{})

var ErrClosed = errors.New("pad is closed")

type Config struct {
	// Timing defaults to PS2Timing when nil. A zero Timing disables all
	// delays.
	Timing *Timing
	Log    LogFunc
}

// Pad is one controller session. It owns the lines for its lifetime and
// serializes all exchanges on them.
type Pad struct {
	link link

	workMutex sync.Mutex
	closed    bool

	isDigital bool
	isLocked  bool

	buf     Response
	raw     Response
	prevRaw Response

	logFunc LogFunc
}

func (p *Pad) log(format string, params ...interface{}) {
	if p.logFunc != nil {
		p.logFunc(" * "+format, params...)
	}
}

func New(pins Pins, cfg *Config) (*Pad, error) {
	if pins.Clock == nil || pins.Command == nil || pins.Attention == nil || pins.Data == nil {
		return nil, errors.New("clock, command, attention and data pins are required")
	}

	if cfg == nil {
		cfg = &Config{}
	}

	timing := PS2Timing()
	if cfg.Timing != nil {
		timing = *cfg.Timing
	}

	p := &Pad{
		link: link{
			pins:   pins,
			timing: timing,
		},
		/* Pads power up in digital mode */
		isDigital: true,
		logFunc:   cfg.Log,
	}

	if err := pins.Data.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	if pins.Ack != nil {
		if err := pins.Ack.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, err
		}
	}

	/* Idle levels */
	if err := pins.Clock.Out(gpio.High); err != nil {
		return nil, err
	}
	if err := pins.Command.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := pins.Attention.Out(gpio.High); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pad) exchange(frame []byte) (Response, error) {
	if p.closed {
		return Response{}, ErrClosed
	}

	resp, err := p.link.exchange(frame)
	if err != nil {
		p.log("Exchange %s failed: %v", hex.EncodeToString(frame), err)
		return resp, err
	}

	p.log("Exchange %s -> %s", hex.EncodeToString(frame), hex.EncodeToString(resp[:]))
	return resp, nil
}

// Poll reads the pad. Button bytes of the stored buffer become the XOR of the
// new response with the previously stored bytes.
func (p *Pad) Poll() error {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	prev0 := p.buf[indexButtons]
	prev1 := p.buf[indexButtons+1]

	resp, err := p.exchange([]byte(cmdPoll))
	if err != nil {
		return err
	}

	p.prevRaw = p.raw
	p.raw = resp

	p.buf = resp
	p.buf[indexButtons] ^= prev0
	p.buf[indexButtons+1] ^= prev1

	return nil
}

func (p *Pad) EnterConfig() error {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	_, err := p.exchange([]byte(cmdEnterConfig))
	return err
}

func (p *Pad) ExitConfig() error {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	_, err := p.exchange([]byte(cmdExitConfig))
	return err
}

// SetMode switches between digital and analog mode. When locked, the analog
// button on the pad can no longer change the mode.
func (p *Pad) SetMode(analog bool, locked bool) error {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	/* The pad only accepts the mode frame inside configuration mode */
	sequence := [][]byte{
		[]byte(cmdEnterConfig),
		setModeFrame(analog, locked),
		[]byte(cmdExitConfig),
	}

	for _, frame := range sequence {
		if _, err := p.exchange(frame); err != nil {
			return err
		}
	}

	p.isDigital = !analog
	p.isLocked = locked

	if analog {
		p.log("Mode set to analog, locked=%v", locked)
	} else {
		p.log("Mode set to digital, locked=%v", locked)
	}

	return nil
}

func (p *Pad) IsDigital() bool {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	return p.isDigital
}

func (p *Pad) IsLocked() bool {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	return p.isLocked
}

// Status is a State together with the mode flags it was taken in.
type Status struct {
	State     State
	IsDigital bool
	IsLocked  bool
}

// Status returns the state and the mode flags under one lock, so a concurrent
// SetMode cannot land between them.
func (p *Pad) Status() Status {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	return Status{
		State:     State{buf: p.buf, raw: p.raw, prevRaw: p.prevRaw},
		IsDigital: p.isDigital,
		IsLocked:  p.isLocked,
	}
}

func (p *Pad) State() State {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	return State{
		buf:     p.buf,
		raw:     p.raw,
		prevRaw: p.prevRaw,
	}
}

func (p *Pad) Down(b Button) bool {
	return p.State().Down(b)
}

func (p *Pad) RightX() uint8 {
	return p.State().RightX()
}

func (p *Pad) RightY() uint8 {
	return p.State().RightY()
}

func (p *Pad) LeftX() uint8 {
	return p.State().LeftX()
}

func (p *Pad) LeftY() uint8 {
	return p.State().LeftY()
}

// Close releases the attention line. Further exchanges return ErrClosed.
func (p *Pad) Close() error {
	p.workMutex.Lock()
	defer p.workMutex.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.link.pins.Attention.Out(gpio.High)
}
