package padnet

import (
	"errors"
	"fmt"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
)

type tlvField struct {
	Type uint8
	Data []byte
}

const (
	tlvTypeBuffer   = 1
	tlvTypeRaw      = 2
	tlvTypePrevious = 3
	tlvTypeFlags    = 4
)

const (
	flagDigital = 1 << 0
	flagLocked  = 1 << 1
)

func tlvUnmarshal(input []byte) ([]tlvField, error) {
	var result []tlvField

	for {
		if len(input) == 0 {
			break
		}
		if len(input) < 2 {
			return nil, errors.New("malformed TLV message")
		}

		fieldLen := int(input[1])
		t := input[0]
		input = input[2:]
		if fieldLen > len(input) {
			return nil, errors.New("field truncated")
		}

		result = append(result, tlvField{
			Type: t,
			Data: append([]byte{}, input[:fieldLen]...),
		})

		input = input[fieldLen:]
	}

	return result, nil
}

func tlvMarshal(fields []tlvField) []byte {
	var result []byte

	for _, m := range fields {
		dl := len(m.Data)
		if dl > 255 {
			panic("Oversized TLV field")
		}
		result = append(result, []byte{m.Type, byte(dl)}...)
		result = append(result, m.Data...)
	}

	return result
}

func MarshalState(status dualshock.Status) []byte {
	st := status.State
	buf, raw, prev := st.Buffer(), st.Raw(), st.Previous()

	var flags byte
	if status.IsDigital {
		flags |= flagDigital
	}
	if status.IsLocked {
		flags |= flagLocked
	}

	return tlvMarshal([]tlvField{
		{Type: tlvTypeBuffer, Data: buf[:]},
		{Type: tlvTypeRaw, Data: raw[:]},
		{Type: tlvTypePrevious, Data: prev[:]},
		{Type: tlvTypeFlags, Data: []byte{flags}},
	})
}

// UnmarshalState decodes a message made by MarshalState. Unknown field types
// are skipped, the three buffers are required.
func UnmarshalState(input []byte) (dualshock.Status, error) {
	var result dualshock.Status

	fields, err := tlvUnmarshal(input)
	if err != nil {
		return result, err
	}

	var buf, raw, prev dualshock.Response
	var seen uint8
	for _, m := range fields {
		var dst *dualshock.Response
		switch m.Type {
		case tlvTypeBuffer:
			dst = &buf
		case tlvTypeRaw:
			dst = &raw
		case tlvTypePrevious:
			dst = &prev
		case tlvTypeFlags:
			if len(m.Data) != 1 {
				return result, errors.New("invalid flags field")
			}
			result.IsDigital = m.Data[0]&flagDigital != 0
			result.IsLocked = m.Data[0]&flagLocked != 0
			continue
		default:
			continue
		}

		if len(m.Data) != dualshock.ResponseLen {
			return result, fmt.Errorf("field %d has length %d", m.Type, len(m.Data))
		}
		copy(dst[:], m.Data)
		seen |= 1 << m.Type
	}

	const required = 1<<tlvTypeBuffer | 1<<tlvTypeRaw | 1<<tlvTypePrevious
	if seen&required != required {
		return result, errors.New("state field missing")
	}

	result.State = dualshock.NewState(buf, raw, prev)
	return result, nil
}
