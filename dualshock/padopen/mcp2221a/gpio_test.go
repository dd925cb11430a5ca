package mcp2221a

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestConfigMsg(t *testing.T) {
	cur := []byte{0x00, 0x08, 0x10, 0x18}

	msg := configMsg(cur, 2, 1, ModeGPIO, DirInput)
	if len(msg) != MsgSz {
		t.Fatalf("wrong message size %d", len(msg))
	}
	if msg[7] != WordSet {
		t.Errorf("GP designation not altered")
	}

	want := []byte{0x00, 0x08, 0x18, 0x18}
	for i, b := range want {
		if msg[8+i] != b {
			t.Errorf("GP%d: expected 0x%02x, got 0x%02x", i, b, msg[8+i])
		}
	}
}

func TestSetMsg(t *testing.T) {
	msg := setMsg(3, 1)

	/* Blocks of GP0..GP2 are left untouched */
	for i := 2; i < 14; i++ {
		if msg[i] != WordClr {
			t.Errorf("byte %d: expected 0x00, got 0x%02x", i, msg[i])
		}
	}

	if msg[14] != WordSet || msg[15] != 1 || msg[16] != WordSet || msg[17] != byte(DirOutput) {
		t.Errorf("unexpected GP3 block: % x", msg[14:18])
	}
}

func TestParseGet(t *testing.T) {
	rsp := make([]byte, MsgSz)
	rsp[2+2*1] = 1
	rsp[2+2*2] = byte(ModeInvalid)

	if v, err := parseGet(rsp, 1); err != nil || v != 1 {
		t.Errorf("GP1: v=%d err=%v", v, err)
	}
	if v, err := parseGet(rsp, 0); err != nil || v != 0 {
		t.Errorf("GP0: v=%d err=%v", v, err)
	}
	if _, err := parseGet(rsp, 2); err == nil {
		t.Errorf("GP2: expected error for non GPIO pin")
	}
}

func TestCheckResponse(t *testing.T) {
	rsp := make([]byte, MsgSz)
	rsp[0] = cmdGPIOGet

	if err := checkResponse(cmdGPIOGet, rsp, MsgSz); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkResponse(cmdGPIOGet, rsp, MsgSz-1); err == nil {
		t.Errorf("expected short read error")
	}
	if err := checkResponse(cmdGPIOSet, rsp, MsgSz); err == nil {
		t.Errorf("expected command mismatch error")
	}

	rsp[1] = 0x01
	if err := checkResponse(cmdGPIOGet, rsp, MsgSz); err == nil {
		t.Errorf("expected failure status error")
	}
}

func TestPinRange(t *testing.T) {
	mcp := &MCP2221A{}
	mcp.GPIO, mcp.SRAM = &GPIO{mcp}, &SRAM{mcp}
	mod := mcp.GPIO

	if _, err := mod.Pin(GPPinCount); err == nil {
		t.Errorf("expected error for pin %d", GPPinCount)
	}

	p, err := mod.Pin(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "GP1" || p.Number() != 1 || p.Function() != "" {
		t.Errorf("unexpected pin identity: %s %d %q", p.Name(), p.Number(), p.Function())
	}

	/* No device behind it: transfers fail and Read reports Low */
	if err := p.Out(gpio.High); err == nil {
		t.Errorf("expected error without device")
	}
	if p.Read() != gpio.Low || p.Err() == nil {
		t.Errorf("expected Low and an error without device")
	}
}
