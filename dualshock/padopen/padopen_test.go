package padopen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path   string
		kind   string
		serial string
		pins   []string
		timing dualshock.Timing
	}{
		{"platform", "platform", "", []string{"GPIO4", "GPIO6", "GPIO7", "GPIO5", "GPIO3"}, dualshock.PS2Timing()},
		{"platform:GPIO17:GPIO27:GPIO22:GPIO23", "platform", "", []string{"GPIO17", "GPIO27", "GPIO22", "GPIO23", "GPIO3"}, dualshock.PS2Timing()},
		{"platform:::::-:ps1", "platform", "", []string{"GPIO4", "GPIO6", "GPIO7", "GPIO5", "-"}, dualshock.PS1Timing()},
		{"usb", "usb", "", []string{"0", "1", "2", "3"}, dualshock.PS2Timing()},
		{"usb:0001234:3:2:1:0:PS1", "usb", "0001234", []string{"3", "2", "1", "0"}, dualshock.PS1Timing()},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := parsePath(tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.kind != tt.kind || p.serial != tt.serial {
				t.Errorf("kind=%q serial=%q", p.kind, p.serial)
			}
			if !reflect.DeepEqual(p.pins, tt.pins) {
				t.Errorf("expected pins %v, got %v", tt.pins, p.pins)
			}
			if p.timing != tt.timing {
				t.Errorf("wrong timing %+v", p.timing)
			}
		})
	}
}

func TestParsePathUnknown(t *testing.T) {
	if _, err := parsePath("serial:/dev/ttyUSB0"); err == nil {
		t.Errorf("expected error for unknown pad type")
	}
}

func TestPinsByName(t *testing.T) {
	names := []string{"PADTEST_CLK", "PADTEST_CMD", "PADTEST_DAT", "PADTEST_ATT"}
	for i, n := range names {
		if err := gpioreg.Register(&gpiotest.Pin{N: n, Num: 9000 + i}); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}

	pins, err := pinsByName(append(names, "-"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pins.Clock.Name() != "PADTEST_CLK" || pins.Attention.Name() != "PADTEST_ATT" || pins.Ack != nil {
		t.Errorf("pins assigned in wrong order")
	}

	pad, err := dualshock.New(pins, &dualshock.Config{Timing: &dualshock.Timing{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pad.Poll(); err != nil {
		t.Errorf("poll failed: %v", err)
	}

	_, err = pinsByName([]string{"PADTEST_CLK", "PADTEST_NOPE", "PADTEST_DAT", "PADTEST_ATT", ""})
	if !errors.Is(err, ErrNoPin) {
		t.Errorf("expected ErrNoPin, got %v", err)
	}
}
