package dualshock

// ResponseLen is the number of bytes clocked in every exchange.
const ResponseLen = 10

// Response is the raw buffer captured during one exchange.
type Response [ResponseLen]byte

// Command templates in transmission order. They are copied before use and
// never modified.
const (
	cmdPoll        = "\x01\x42"
	cmdEnterConfig = "\x01\x43\x00\x01"
	cmdSetMode     = "\x01\x44\x00\x00\x00"
	cmdExitConfig  = "\x01\x43\x00\x00\x5a\x5a\x5a\x5a\x5a"
)

// Parameter bytes of the set-mode frame.
const (
	ModeDigital byte = 0x00
	ModeAnalog  byte = 0x01

	ModeUnlock byte = 0x02
	ModeLock   byte = 0x03
)

const (
	setModeIndexMode = 3
	setModeIndexLock = 4
)

// Header values returned in byte 1 and 2 of a response.
const (
	idDigital    byte = 0x41
	idAnalog     byte = 0x73
	idAnalogFull byte = 0x79
	idConfig     byte = 0xf3

	headerReady byte = 0x5a
)

// Offsets into a response.
const (
	indexMode    = 1
	indexReady   = 2
	indexButtons = 3
	indexRightX  = 5
	indexRightY  = 6
	indexLeftX   = 7
	indexLeftY   = 8
)

func setModeFrame(analog bool, locked bool) []byte {
	frame := []byte(cmdSetMode)

	frame[setModeIndexMode] = ModeDigital
	if analog {
		frame[setModeIndexMode] = ModeAnalog
	}

	frame[setModeIndexLock] = ModeUnlock
	if locked {
		frame[setModeIndexLock] = ModeLock
	}

	return frame
}
