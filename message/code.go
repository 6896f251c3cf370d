// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package message

import "fmt"

// Code is the CoAP code registry value, a 3-bit class and 5-bit detail
// rendered as "c.dd" (e.g. 0.01 for GET, 2.05 for Content).
type Code uint8

// MakeCode builds a Code from its class and detail parts.
func MakeCode(class, detail uint8) Code {
	return Code(class&0x07)<<5 | Code(detail&0x1F)
}

// Request codes.
const (
	CodeEmpty  Code = 0
	CodeGet    Code = 1
	CodePost   Code = 2
	CodePut    Code = 3
	CodeDelete Code = 4
)

// Response codes.
var (
	CodeCreated             = MakeCode(2, 1)
	CodeDeleted             = MakeCode(2, 2)
	CodeValid               = MakeCode(2, 3)
	CodeChanged             = MakeCode(2, 4)
	CodeContent             = MakeCode(2, 5)
	CodeBadRequest          = MakeCode(4, 0)
	CodeUnauthorized        = MakeCode(4, 1)
	CodeNotFound            = MakeCode(4, 4)
	CodeMethodNotAllowed    = MakeCode(4, 5)
	CodeInternalServerError = MakeCode(5, 0)
	CodeNotImplemented      = MakeCode(5, 1)
	CodeServiceUnavailable  = MakeCode(5, 3)
)

// Class returns the code class (0 request, 2 success, 4 client error, 5 server error).
func (c Code) Class() uint8 { return uint8(c) >> 5 }

// Detail returns the code detail.
func (c Code) Detail() uint8 { return uint8(c) & 0x1F }

// IsRequest reports whether the code is a non-empty request code.
func (c Code) IsRequest() bool { return c.Class() == 0 && c != CodeEmpty }

// String implements fmt.Stringer, e.g. "0.01".
func (c Code) String() string {
	return fmt.Sprintf("%d.%02d", c.Class(), c.Detail())
}
