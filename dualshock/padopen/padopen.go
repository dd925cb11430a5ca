// Package padopen opens a pad from a path string:
//
//	platform:<clk>:<cmd>:<dat>:<att>[:<ack>][:ps1]
//	usb:<serial>[:<clk>:<cmd>:<dat>:<att>][:ps1]
//
// platform uses the host GPIOs by periph.io name, usb uses the GP pins of an
// MCP2221A. A trailing ps1 selects the slower PlayStation 1 timing.
package padopen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"github.com/BertoldVdb/DualshockResearch/dualshock/padopen/mcp2221a"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var ErrNoPin = errors.New("gpio not found")

// Pad is an opened pad that also releases its line driver on Close.
type Pad struct {
	*dualshock.Pad

	release func() error
}

func (p *Pad) Close() error {
	err := p.Pad.Close()
	if p.release != nil {
		if errRelease := p.release(); err == nil {
			err = errRelease
		}
	}
	return err
}

// Default wiring: clock 4, command 6, data 7, attention 5, ack 3.
var defaultPlatformPins = []string{"GPIO4", "GPIO6", "GPIO7", "GPIO5", "GPIO3"}

var defaultUSBPins = []string{"0", "1", "2", "3"}

type padPath struct {
	kind   string
	serial string
	pins   []string
	timing dualshock.Timing
}

func getPart(parts []string, index int, def string) string {
	if index >= len(parts) || parts[index] == "" {
		return def
	}
	return parts[index]
}

func parsePath(path string) (padPath, error) {
	parts := strings.Split(path, ":")
	p := padPath{
		kind:   parts[0],
		timing: dualshock.PS2Timing(),
	}

	last := strings.ToLower(parts[len(parts)-1])
	if len(parts) > 1 && (last == "ps1" || last == "ps2") {
		if last == "ps1" {
			p.timing = dualshock.PS1Timing()
		}
		parts = parts[:len(parts)-1]
	}

	switch p.kind {
	case "platform":
		for i, def := range defaultPlatformPins {
			p.pins = append(p.pins, getPart(parts, i+1, def))
		}
	case "usb":
		p.serial = getPart(parts, 1, "")
		for i, def := range defaultUSBPins {
			p.pins = append(p.pins, getPart(parts, i+2, def))
		}
	default:
		return p, errors.New("pad type not supported, use 'usb' or 'platform'")
	}

	return p, nil
}

func pinsByName(names []string) (dualshock.Pins, error) {
	var pins dualshock.Pins
	var ios [5]gpio.PinIO

	for i, name := range names {
		if name == "" || name == "-" {
			continue
		}

		ios[i] = gpioreg.ByName(name)
		if ios[i] == nil {
			return pins, fmt.Errorf("%w: %s", ErrNoPin, name)
		}
	}

	pins.Clock, pins.Command, pins.Data, pins.Attention, pins.Ack = ios[0], ios[1], ios[2], ios[3], ios[4]

	return pins, nil
}

func OpenPadPlatform(pinNames []string, timing *dualshock.Timing, logOut dualshock.LogFunc) (*Pad, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}

	pins, err := pinsByName(pinNames)
	if err != nil {
		return nil, err
	}

	pad, err := dualshock.New(pins, &dualshock.Config{Timing: timing, Log: logOut})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pad: %w", err)
	}

	return &Pad{Pad: pad}, nil
}

func OpenPadUSB(serial string, pinNumbers []string, timing *dualshock.Timing, logOut dualshock.LogFunc) (*Pad, error) {
	dev, err := mcp2221a.Open(mcp2221a.VID, mcp2221a.PID, serial)
	if err != nil {
		return nil, err
	}

	var gp [4]*mcp2221a.Pin
	for i := range gp {
		n, err := strconv.ParseUint(pinNumbers[i], 0, 8)
		if err == nil {
			gp[i], err = dev.GPIO.Pin(byte(n))
		}
		if err != nil {
			dev.Close()
			return nil, fmt.Errorf("%w: GP%s: %v", ErrNoPin, pinNumbers[i], err)
		}
	}

	pins := dualshock.Pins{
		Clock:     gp[0],
		Command:   gp[1],
		Data:      gp[2],
		Attention: gp[3],
	}

	pad, err := dualshock.New(pins, &dualshock.Config{Timing: timing, Log: logOut})
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to initialize pad via USB: %w", err)
	}

	return &Pad{Pad: pad, release: dev.Close}, nil
}

func OpenPad(path string, logOut dualshock.LogFunc) (*Pad, error) {
	p, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	if p.kind == "usb" {
		return OpenPadUSB(p.serial, p.pins, &p.timing, logOut)
	}
	return OpenPadPlatform(p.pins, &p.timing, logOut)
}
