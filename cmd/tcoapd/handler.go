// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package main

import (
	"trpc.group/trpc-go/tcoap"
	"trpc.group/trpc-go/tcoap/log"
	"trpc.group/trpc-go/tcoap/message"
)

// resourceHandler serves a static set of resources keyed by Uri-Path.
// The map is never mutated after construction, so concurrent handler
// invocations need no locking.
type resourceHandler struct {
	resources map[string]string
}

func newResourceHandler(resources map[string]string) *resourceHandler {
	return &resourceHandler{resources: resources}
}

// Handle implements tcoap.Handler.
func (h *resourceHandler) Handle(req *message.Message, w tcoap.ResponseWriter) {
	if req.Code != message.CodeGet {
		h.respond(req, w, message.CodeMethodNotAllowed, nil)
		return
	}
	payload, ok := h.resources[req.Path()]
	if !ok {
		h.respond(req, w, message.CodeNotFound, nil)
		return
	}
	if err := w.Reply(req, []byte(payload)); err != nil {
		log.Errorf("tcoapd: reply to %s: %v", w.RemoteAddr(), err)
	}
}

func (h *resourceHandler) respond(req *message.Message, w tcoap.ResponseWriter, code message.Code, payload []byte) {
	rsp := message.New()
	rsp.Type = message.NonConfirmable
	if req.Type == message.Confirmable {
		rsp.Type = message.Acknowledgement
	}
	rsp.Code = code
	rsp.MessageID = req.MessageID
	if err := rsp.SetToken(req.Token); err != nil {
		return
	}
	rsp.Payload = payload
	if err := w.Send(rsp); err != nil {
		log.Errorf("tcoapd: respond %s to %s: %v", code, w.RemoteAddr(), err)
	}
}
