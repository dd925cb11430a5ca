package dualshock

// Button selects one bit of the two button bytes.
type Button struct {
	byteIndex uint8
	bitMask   uint8
	name      string
}

var (
	ButtonSelect     = Button{3, 1 << 0, "Select"}
	ButtonStickLeft  = Button{3, 1 << 1, "L3"}
	ButtonStickRight = Button{3, 1 << 2, "R3"}
	ButtonStart      = Button{3, 1 << 3, "Start"}
	ButtonUp         = Button{3, 1 << 4, "Up"}
	ButtonRight      = Button{3, 1 << 5, "Right"}
	ButtonDown       = Button{3, 1 << 6, "Down"}
	ButtonLeft       = Button{3, 1 << 7, "Left"}

	ButtonL2       = Button{4, 1 << 0, "L2"}
	ButtonR2       = Button{4, 1 << 1, "R2"}
	ButtonL1       = Button{4, 1 << 2, "L1"}
	ButtonR1       = Button{4, 1 << 3, "R1"}
	ButtonTriangle = Button{4, 1 << 4, "Triangle"}
	ButtonCircle   = Button{4, 1 << 5, "Circle"}
	ButtonCross    = Button{4, 1 << 6, "Cross"}
	ButtonSquare   = Button{4, 1 << 7, "Square"}
)

// Buttons lists every button in wire order.
var Buttons = []Button{
	ButtonSelect, ButtonStickLeft, ButtonStickRight, ButtonStart,
	ButtonUp, ButtonRight, ButtonDown, ButtonLeft,
	ButtonL2, ButtonR2, ButtonL1, ButtonR1,
	ButtonTriangle, ButtonCircle, ButtonCross, ButtonSquare,
}

func (b Button) String() string {
	return b.name
}

// State is a snapshot of a pad after a poll.
//
// Bytes 3 and 4 of the stored buffer are not the instantaneous button levels:
// each poll XORs the new bytes with the stored ones, so Down reports whether a
// button line differs from what the previous poll stored. Held, Changed,
// Pressed and Released work on the raw responses instead.
type State struct {
	buf     Response
	raw     Response
	prevRaw Response
}

// Down tests the button bit in the stored buffer.
func (s State) Down(b Button) bool {
	return s.buf[b.byteIndex]&b.bitMask != 0
}

// Held reports whether the button is pressed in the last raw response. The
// lines are active low.
func (s State) Held(b Button) bool {
	return s.raw[b.byteIndex]&b.bitMask == 0
}

// Changed reports whether the raw button level differs between the last two
// polls.
func (s State) Changed(b Button) bool {
	return (s.raw[b.byteIndex]^s.prevRaw[b.byteIndex])&b.bitMask != 0
}

func (s State) Pressed(b Button) bool {
	return s.Changed(b) && s.Held(b)
}

func (s State) Released(b Button) bool {
	return s.Changed(b) && !s.Held(b)
}

func (s State) RightX() uint8 {
	return s.buf[indexRightX]
}

func (s State) RightY() uint8 {
	return s.buf[indexRightY]
}

func (s State) LeftX() uint8 {
	return s.buf[indexLeftX]
}

func (s State) LeftY() uint8 {
	return s.buf[indexLeftY]
}

// Buffer returns the stored buffer, including the change mask.
func (s State) Buffer() Response {
	return s.buf
}

// Raw returns the last response as it was clocked in.
func (s State) Raw() Response {
	return s.raw
}

// Previous returns the raw response of the poll before the last one.
func (s State) Previous() Response {
	return s.prevRaw
}

// ModeID is the mode byte echoed in the response header.
func (s State) ModeID() byte {
	return s.raw[indexMode]
}

// Analog reports whether the pad answered in one of the analog modes.
func (s State) Analog() bool {
	return s.raw[indexMode]&0xf0 == 0x70
}

// Present is a plausibility check on the header bytes. A floating or
// disconnected data line fails it.
func (s State) Present() bool {
	if s.raw[indexReady] != headerReady {
		return false
	}

	switch s.raw[indexMode] {
	case idDigital, idAnalog, idAnalogFull, idConfig:
		return true
	}
	return false
}

// NewState builds a State from buffers, for clients that receive them from
// elsewhere.
func NewState(buf, raw, prevRaw Response) State {
	return State{buf: buf, raw: raw, prevRaw: prevRaw}
}
