// Package mcp2221a drives the GPIO pins of a Microchip MCP2221A USB to
// GPIO/I²C/UART converter over its USB HID interface, and exposes them as
// periph.io GPIO pins so they can carry a bit-banged bus.
//
// Datasheet: http://ww1.microchip.com/downloads/en/devicedoc/20005565b.pdf
package mcp2221a

// Based on: https://github.com/ardnew/mcp2221a
// MIT License
//
// Copyright (c) 2020 ardnew
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

import (
	"errors"
	"fmt"
	"sync"

	usb "github.com/karalabe/hid"
)

// VID and PID are the official vendor and product identifiers assigned by the
// USB-IF.
const (
	VID = 0x04D8 // 16-bit vendor ID for Microchip Technology Inc.
	PID = 0x00DD // 16-bit product ID for the Microchip MCP2221A.
)

// MsgSz is the size (in bytes) of all command and response messages.
const MsgSz = 64

// WordSet and WordClr are the logical true and false values for a single word
// (byte) in a message.
const (
	WordSet byte = 0xFF
	WordClr byte = 0x00
)

// Commands used by this package. Each response echoes the command in its
// first word.
const (
	cmdGPIOSet byte = 0x50
	cmdGPIOGet byte = 0x51
	cmdSRAMSet byte = 0x60
	cmdSRAMGet byte = 0x61
)

// Byte range of the GP pin settings in the SRAM get response.
const (
	sramGPStart = 22
	sramGPStop  = 25
)

var ErrNoDevice = errors.New("no MCP2221A found")

func makeMsg() []byte { return make([]byte, MsgSz) }

// MCP2221A is an opened converter. Messages to the device are serialized, so
// the pins can be used from several goroutines.
type MCP2221A struct {
	Device *usb.Device
	Serial string

	GPIO *GPIO
	SRAM *SRAM

	mu sync.Mutex
}

// AttachedDevices returns all connected USB HID devices matching vid and pid.
func AttachedDevices(vid uint16, pid uint16) []usb.DeviceInfo {
	return usb.Enumerate(vid, pid)
}

func NewFromDev(dev *usb.Device) (*MCP2221A, error) {
	if dev == nil {
		return nil, errors.New("nil USB HID device")
	}

	mcp := &MCP2221A{
		Device: dev,
		Serial: dev.Serial,
	}
	mcp.GPIO, mcp.SRAM = &GPIO{mcp}, &SRAM{mcp}

	return mcp, nil
}

// Open opens the first attached converter whose serial number matches. An
// empty serial matches any device.
func Open(vid uint16, pid uint16, serial string) (*MCP2221A, error) {
	for _, m := range AttachedDevices(vid, pid) {
		if m.Serial != serial && serial != "" {
			continue
		}

		hid, err := m.Open()
		if err != nil {
			return nil, err
		}

		return NewFromDev(hid)
	}

	return nil, ErrNoDevice
}

func (mcp *MCP2221A) valid() error {
	if mcp == nil {
		return errors.New("nil MCP2221A")
	}
	if mcp.Device == nil {
		return errors.New("device is closed")
	}
	return nil
}

func (mcp *MCP2221A) Close() error {
	mcp.mu.Lock()
	defer mcp.mu.Unlock()

	if err := mcp.valid(); err != nil {
		return err
	}

	err := mcp.Device.Close()
	mcp.Device = nil
	return err
}

// send transmits a command message and returns the response message. The
// response must echo the command and report success in its second word.
func (mcp *MCP2221A) send(cmd byte, data []byte) ([]byte, error) {
	mcp.mu.Lock()
	defer mcp.mu.Unlock()

	if err := mcp.valid(); err != nil {
		return nil, err
	}

	data[0] = cmd
	if _, err := mcp.Device.Write(data); err != nil {
		return nil, fmt.Errorf("write [cmd=0x%02X]: %w", cmd, err)
	}

	rsp := makeMsg()
	recv, err := mcp.Device.Read(rsp)
	if err != nil {
		return nil, fmt.Errorf("read [cmd=0x%02X]: %w", cmd, err)
	}

	return rsp, checkResponse(cmd, rsp, recv)
}

func checkResponse(cmd byte, rsp []byte, recv int) error {
	if recv < MsgSz {
		return fmt.Errorf("read [cmd=0x%02X]: short read (%d of %d bytes)", cmd, recv, MsgSz)
	}
	if rsp[0] != cmd || rsp[1] != WordClr {
		return fmt.Errorf("read [cmd=0x%02X]: command failed", cmd)
	}
	return nil
}

// SRAM holds the volatile active settings of the chip.
type SRAM struct {
	*MCP2221A
}

// readRange returns the SRAM settings in the inclusive interval.
func (mod *SRAM) readRange(start byte, stop byte) ([]byte, error) {
	if start > stop || stop >= MsgSz {
		return nil, fmt.Errorf("invalid byte range: [%d, %d]", start, stop)
	}

	rsp, err := mod.send(cmdSRAMGet, makeMsg())
	if err != nil {
		return nil, err
	}

	return rsp[start : stop+1], nil
}
