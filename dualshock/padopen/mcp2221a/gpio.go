package mcp2221a

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

type (
	GPIOMode byte
	GPIODir  byte
)

const (
	// GPPinCount is the number of GPIO pins available.
	GPPinCount = 4

	ModeGPIO    GPIOMode = 0x00
	ModeInvalid GPIOMode = 0xEE

	DirOutput GPIODir = 0x00
	DirInput  GPIODir = 0x01
)

// GPIO contains the methods associated with the GPIO module of the MCP2221A.
type GPIO struct {
	*MCP2221A
}

func checkPin(pin byte) error {
	if pin >= GPPinCount {
		return fmt.Errorf("invalid GPIO pin: %d", pin)
	}
	return nil
}

// configMsg builds an SRAM set message that rewrites all GP designations from
// cur, with pin replaced.
func configMsg(cur []byte, pin byte, val byte, mode GPIOMode, dir GPIODir) []byte {
	cmd := makeMsg()

	cmd[7] = WordSet // alter GP designation
	copy(cmd[8:8+GPPinCount], cur)
	cmd[8+pin] = (val << 4) | (byte(dir) << 3) | byte(mode)

	return cmd
}

// setMsg builds a GPIO set message that drives one pin as an output.
func setMsg(pin byte, val byte) []byte {
	cmd := makeMsg()

	i := 2 + 4*pin
	cmd[i+0] = WordSet // alter output value
	cmd[i+1] = val
	cmd[i+2] = WordSet // alter direction
	cmd[i+3] = byte(DirOutput)

	return cmd
}

// parseGet extracts the level of pin from a GPIO get response.
func parseGet(rsp []byte, pin byte) (byte, error) {
	v := rsp[2+2*pin]
	if v == byte(ModeInvalid) {
		return WordClr, fmt.Errorf("pin not in GPIO mode: %d", pin)
	}
	return v, nil
}

// SetConfig configures a pin in SRAM. The setting is lost on reset.
func (mod *GPIO) SetConfig(pin byte, val byte, mode GPIOMode, dir GPIODir) error {
	if err := checkPin(pin); err != nil {
		return err
	}

	cur, err := mod.SRAM.readRange(sramGPStart, sramGPStop)
	if err != nil {
		return fmt.Errorf("SRAM read: %w", err)
	}

	_, err = mod.send(cmdSRAMSet, configMsg(cur, pin, val, mode, dir))
	return err
}

func (mod *GPIO) Set(pin byte, val byte) error {
	if err := checkPin(pin); err != nil {
		return err
	}

	_, err := mod.send(cmdGPIOSet, setMsg(pin, val))
	return err
}

func (mod *GPIO) Get(pin byte) (byte, error) {
	if err := checkPin(pin); err != nil {
		return WordClr, err
	}

	rsp, err := mod.send(cmdGPIOGet, makeMsg())
	if err != nil {
		return WordClr, err
	}

	return parseGet(rsp, pin)
}

// Pin returns GP pin n as a periph.io pin. The pin is switched to GPIO mode
// the first time it is used as input or output.
func (mod *GPIO) Pin(n byte) (*Pin, error) {
	if err := checkPin(n); err != nil {
		return nil, err
	}
	return &Pin{mod: mod, n: n}, nil
}

// Pin adapts one GP pin to gpio.PinIO. The chip has no pull resistors or edge
// detection.
type Pin struct {
	mod *GPIO
	n   byte

	mu         sync.Mutex
	configured bool
	dir        GPIODir
	out        gpio.Level
	err        error
}

var errNotSupported = errors.New("mcp2221a: not supported")

func (p *Pin) String() string {
	return p.Name()
}

func (p *Pin) Name() string {
	return "GP" + strconv.Itoa(int(p.n))
}

func (p *Pin) Number() int {
	return int(p.n)
}

func (p *Pin) Function() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.configured {
		return ""
	}
	if p.dir == DirInput {
		return "In"
	}
	return "Out/" + p.out.String()
}

func (p *Pin) Halt() error {
	return nil
}

func (p *Pin) configure(dir GPIODir, val byte) error {
	if p.configured && p.dir == dir {
		return nil
	}

	if err := p.mod.SetConfig(p.n, val, ModeGPIO, dir); err != nil {
		return err
	}
	p.configured = true
	p.dir = dir
	return nil
}

func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var val byte
	if l == gpio.High {
		val = 1
	}

	if err := p.configure(DirOutput, val); err != nil {
		return err
	}

	if err := p.mod.Set(p.n, val); err != nil {
		return err
	}
	p.out = l
	return nil
}

func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errNotSupported
}

func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errNotSupported
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.configure(DirInput, 0)
}

// Read returns Low when the transfer fails; Err reports the failure.
func (p *Pin) Read() gpio.Level {
	v, err := p.mod.Get(p.n)

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()

	if err != nil {
		return gpio.Low
	}
	return v != 0
}

// Err returns the error of the last Read.
func (p *Pin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *Pin) Pull() gpio.Pull {
	return gpio.Float
}

func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

var _ gpio.PinIO = &Pin{}
