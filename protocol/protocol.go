package protocol

import (
	"encoding/json"
)

const (
	MsgHello  = "hello"
	MsgDefine = "define"
	MsgQuery  = "query"
	MsgValues = "values"

	MsgWelcome    = "welcome"
	MsgDefined    = "defined"
	MsgValue      = "value"
	MsgAllocation = "allocation"
	MsgError      = "error"
)

// Version is the protocol version a client must announce in Hello.
const Version = 1

// Error codes that originate in the host rather than in the game engine.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeNoGame     = "NO_GAME"
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
