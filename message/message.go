// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package message implements the CoAP message codec (RFC 7252).
//
// A Message carries the fixed four byte header, a token of at most eight
// bytes, a delta-encoded option list and an optional payload separated by
// the 0xFF marker. The codec is deliberately strict on decode: any datagram
// that violates the wire format yields an error instead of a partial message.
package message

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Version is the only protocol version defined by RFC 7252.
const Version = 1

// MaxTokenLength is the longest token the wire format can carry.
// Token length values 9-15 are reserved and treated as format errors.
const MaxTokenLength = 8

const payloadMarker = 0xFF

// Type is the CoAP message type carried in the header.
type Type uint8

// Message types.
const (
	Confirmable Type = iota
	NonConfirmable
	Acknowledgement
	Reset
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Confirmable:
		return "CON"
	case NonConfirmable:
		return "NON"
	case Acknowledgement:
		return "ACK"
	case Reset:
		return "RST"
	default:
		return "UNKNOWN"
	}
}

// Decode errors.
var (
	ErrMessageTooShort    = errors.New("message: datagram shorter than encoded length")
	ErrInvalidVersion     = errors.New("message: unsupported protocol version")
	ErrInvalidTokenLength = errors.New("message: reserved token length")
	ErrOptionTruncated    = errors.New("message: truncated option")
	ErrReservedOption     = errors.New("message: reserved option nibble 15")
	ErrEmptyPayload       = errors.New("message: payload marker with zero-length payload")
	ErrOptionTooLong      = errors.New("message: option value exceeds encodable length")
)

type option struct {
	id    OptionID
	value []byte
}

// Message is a single CoAP message.
type Message struct {
	Type      Type
	Code      Code
	MessageID uint16
	Token     []byte
	Payload   []byte

	opts []option
}

// New creates an empty confirmable message.
func New() *Message {
	return &Message{Type: Confirmable, Code: CodeEmpty}
}

// SetToken sets the message token. Tokens longer than MaxTokenLength
// cannot be encoded and are rejected.
func (m *Message) SetToken(token []byte) error {
	if len(token) > MaxTokenLength {
		return ErrInvalidTokenLength
	}
	m.Token = token
	return nil
}

// AddOption appends a value for the given option. CoAP options are
// repeatable; values for the same option keep insertion order.
func (m *Message) AddOption(id OptionID, value []byte) {
	m.opts = append(m.opts, option{id: id, value: value})
}

// SetOption drops any existing values of the option and sets a single one.
func (m *Message) SetOption(id OptionID, value []byte) {
	m.removeOption(id)
	m.AddOption(id, value)
}

func (m *Message) removeOption(id OptionID) {
	kept := m.opts[:0]
	for _, o := range m.opts {
		if o.id != id {
			kept = append(kept, o)
		}
	}
	m.opts = kept
}

// Option returns the first value of the option.
func (m *Message) Option(id OptionID) ([]byte, bool) {
	for _, o := range m.opts {
		if o.id == id {
			return o.value, true
		}
	}
	return nil, false
}

// Options returns all values of the option in insertion order.
func (m *Message) Options(id OptionID) [][]byte {
	var values [][]byte
	for _, o := range m.opts {
		if o.id == id {
			values = append(values, o.value)
		}
	}
	return values
}

// Path joins the Uri-Path option values with "/".
func (m *Message) Path() string {
	segments := m.Options(URIPath)
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, "/")
}

// SetPath replaces the Uri-Path options with the segments of path.
func (m *Message) SetPath(path string) {
	m.removeOption(URIPath)
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		m.AddOption(URIPath, []byte(segment))
	}
}

// Marshal encodes the message to its wire representation.
func (m *Message) Marshal() ([]byte, error) {
	if len(m.Token) > MaxTokenLength {
		return nil, ErrInvalidTokenLength
	}
	buf := make([]byte, 0, 4+len(m.Token)+len(m.Payload)+8*len(m.opts))
	buf = append(buf,
		Version<<6|byte(m.Type)<<4|byte(len(m.Token)),
		byte(m.Code),
	)
	buf = append(buf, byte(m.MessageID>>8), byte(m.MessageID))
	buf = append(buf, m.Token...)

	opts := make([]option, len(m.opts))
	copy(opts, m.opts)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].id < opts[j].id })

	var prev OptionID
	for _, o := range opts {
		var err error
		buf, err = appendOption(buf, uint32(o.id-prev), o.value)
		if err != nil {
			return nil, err
		}
		prev = o.id
	}
	if len(m.Payload) > 0 {
		buf = append(buf, payloadMarker)
		buf = append(buf, m.Payload...)
	}
	return buf, nil
}

func appendOption(buf []byte, delta uint32, value []byte) ([]byte, error) {
	dn, dext, err := splitOptionField(delta)
	if err != nil {
		return nil, err
	}
	ln, lext, err := splitOptionField(uint32(len(value)))
	if err != nil {
		return nil, err
	}
	buf = append(buf, dn<<4|ln)
	buf = append(buf, dext...)
	buf = append(buf, lext...)
	return append(buf, value...), nil
}

// splitOptionField encodes an option delta or length into its nibble and
// extended bytes per RFC 7252 section 3.1.
func splitOptionField(v uint32) (nibble byte, ext []byte, err error) {
	switch {
	case v < 13:
		return byte(v), nil, nil
	case v < 269:
		return 13, []byte{byte(v - 13)}, nil
	case v < 269+65536:
		ext = make([]byte, 2)
		binary.BigEndian.PutUint16(ext, uint16(v-269))
		return 14, ext, nil
	default:
		return 0, nil, ErrOptionTooLong
	}
}

// Unmarshal decodes a single datagram into a Message.
func Unmarshal(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, ErrMessageTooShort
	}
	if data[0]>>6 != Version {
		return nil, ErrInvalidVersion
	}
	tkl := int(data[0] & 0x0F)
	if tkl > MaxTokenLength {
		return nil, ErrInvalidTokenLength
	}
	m := &Message{
		Type:      Type(data[0] >> 4 & 0x03),
		Code:      Code(data[1]),
		MessageID: binary.BigEndian.Uint16(data[2:4]),
	}
	rest := data[4:]
	if len(rest) < tkl {
		return nil, ErrMessageTooShort
	}
	if tkl > 0 {
		m.Token = append([]byte(nil), rest[:tkl]...)
	}
	rest = rest[tkl:]

	var id OptionID
	for len(rest) > 0 {
		if rest[0] == payloadMarker {
			if len(rest) == 1 {
				return nil, ErrEmptyPayload
			}
			m.Payload = append([]byte(nil), rest[1:]...)
			return m, nil
		}
		dn, ln := rest[0]>>4, rest[0]&0x0F
		rest = rest[1:]
		delta, next, err := readOptionField(dn, rest)
		if err != nil {
			return nil, err
		}
		rest = next
		length, next, err := readOptionField(ln, rest)
		if err != nil {
			return nil, err
		}
		rest = next
		if uint32(len(rest)) < length {
			return nil, ErrOptionTruncated
		}
		id += OptionID(delta)
		m.opts = append(m.opts, option{id: id, value: append([]byte(nil), rest[:length]...)})
		rest = rest[length:]
	}
	return m, nil
}

func readOptionField(nibble byte, rest []byte) (uint32, []byte, error) {
	switch nibble {
	case 13:
		if len(rest) < 1 {
			return 0, nil, ErrOptionTruncated
		}
		return uint32(rest[0]) + 13, rest[1:], nil
	case 14:
		if len(rest) < 2 {
			return 0, nil, ErrOptionTruncated
		}
		return uint32(binary.BigEndian.Uint16(rest[:2])) + 269, rest[2:], nil
	case 15:
		return 0, nil, ErrReservedOption
	default:
		return uint32(nibble), rest, nil
	}
}
