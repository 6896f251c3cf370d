// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package message

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalGetRequest(t *testing.T) {
	m := New()
	m.Code = CodeGet
	m.MessageID = 1
	require.Nil(t, m.SetToken([]byte{0x51, 0x55, 0x77, 0xE8}))
	m.AddOption(URIPath, []byte("test-echo"))

	data, err := m.Marshal()
	require.Nil(t, err)
	want := append([]byte{0x44, 0x01, 0x00, 0x01, 0x51, 0x55, 0x77, 0xE8, 0xB9}, []byte("test-echo")...)
	assert.Equal(t, want, data)
}

func TestRoundTrip(t *testing.T) {
	m := New()
	m.Type = NonConfirmable
	m.Code = CodePost
	m.MessageID = 0xBEEF
	require.Nil(t, m.SetToken([]byte{0x01, 0x02}))
	// Out of number order on purpose, Marshal must sort.
	m.AddOption(URIQuery, []byte("a=b"))
	m.AddOption(URIPath, []byte("sensors"))
	m.AddOption(URIPath, []byte("temp"))
	m.Payload = []byte("21.5")

	data, err := m.Marshal()
	require.Nil(t, err)

	got, err := Unmarshal(data)
	require.Nil(t, err)
	assert.Equal(t, NonConfirmable, got.Type)
	assert.Equal(t, CodePost, got.Code)
	assert.Equal(t, uint16(0xBEEF), got.MessageID)
	assert.Equal(t, []byte{0x01, 0x02}, got.Token)
	assert.Equal(t, [][]byte{[]byte("sensors"), []byte("temp")}, got.Options(URIPath))
	q, ok := got.Option(URIQuery)
	assert.True(t, ok)
	assert.Equal(t, []byte("a=b"), q)
	assert.Equal(t, []byte("21.5"), got.Payload)
	assert.Equal(t, "sensors/temp", got.Path())
}

func TestExtendedOptionDelta(t *testing.T) {
	m := New()
	m.Code = CodeGet
	m.AddOption(Size1, []byte{0x40})

	data, err := m.Marshal()
	require.Nil(t, err)
	// Delta 60 encodes as nibble 13 with extended byte 60-13.
	assert.Equal(t, []byte{0x40, 0x01, 0x00, 0x00, 0xD1, 0x2F, 0x40}, data)

	got, err := Unmarshal(data)
	require.Nil(t, err)
	v, ok := got.Option(Size1)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x40}, v)
}

func TestExtendedOptionLength(t *testing.T) {
	long := bytes.Repeat([]byte{0xAB}, 300)
	m := New()
	m.Code = CodePut
	m.AddOption(URIPath, long)

	data, err := m.Marshal()
	require.Nil(t, err)
	got, err := Unmarshal(data)
	require.Nil(t, err)
	v, ok := got.Option(URIPath)
	assert.True(t, ok)
	assert.Equal(t, long, v)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"too short", []byte{0x44, 0x01, 0x00}, ErrMessageTooShort},
		{"bad version", []byte{0x84, 0x01, 0x00, 0x01}, ErrInvalidVersion},
		{"reserved token length", []byte{0x49, 0x01, 0x00, 0x01}, ErrInvalidTokenLength},
		{"token truncated", []byte{0x44, 0x01, 0x00, 0x01, 0x51, 0x55}, ErrMessageTooShort},
		{"reserved delta nibble", []byte{0x40, 0x01, 0x00, 0x01, 0xF1}, ErrReservedOption},
		{"reserved length nibble", []byte{0x40, 0x01, 0x00, 0x01, 0x1F}, ErrReservedOption},
		{"option truncated", []byte{0x40, 0x01, 0x00, 0x01, 0xB9, 'a', 'b'}, ErrOptionTruncated},
		{"extended delta truncated", []byte{0x40, 0x01, 0x00, 0x01, 0xD1}, ErrOptionTruncated},
		{"empty payload", []byte{0x40, 0x01, 0x00, 0x01, 0xFF}, ErrEmptyPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSetTokenTooLong(t *testing.T) {
	m := New()
	err := m.SetToken(bytes.Repeat([]byte{0x00}, 9))
	assert.ErrorIs(t, err, ErrInvalidTokenLength)
}

func TestSetPath(t *testing.T) {
	m := New()
	m.SetPath("/well-known/core/")
	assert.Equal(t, [][]byte{[]byte("well-known"), []byte("core")}, m.Options(URIPath))
	assert.Equal(t, "well-known/core", m.Path())

	m.SetPath("replaced")
	assert.Equal(t, [][]byte{[]byte("replaced")}, m.Options(URIPath))
}

func TestSetOptionReplaces(t *testing.T) {
	m := New()
	m.AddOption(URIPath, []byte("a"))
	m.AddOption(URIPath, []byte("b"))
	m.SetOption(URIPath, []byte("c"))
	assert.Equal(t, [][]byte{[]byte("c")}, m.Options(URIPath))
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "0.01", CodeGet.String())
	assert.Equal(t, "2.05", CodeContent.String())
	assert.Equal(t, "4.04", CodeNotFound.String())
	assert.True(t, CodeGet.IsRequest())
	assert.False(t, CodeContent.IsRequest())
	assert.False(t, CodeEmpty.IsRequest())
}
