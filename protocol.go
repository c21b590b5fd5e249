package main

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Parse-level failures reported back to the sender. Error text is part of
// the wire protocol.
var (
	errInvalidAction    = errors.New("Invalid action")
	errRoomCodeRequired = errors.New("Room code required")
)

var validate = validator.New()

// envelope is the raw inbound frame. bpm stays raw so a junk value can be
// dropped without failing the whole envelope.
type envelope struct {
	Action   string          `json:"action"`
	Room     string          `json:"room"`
	Username string          `json:"username"`
	Data     map[string]any  `json:"data"`
	BPM      json.RawMessage `json:"bpm"`
}

// request is the closed set of typed actions the dispatcher understands.
type request interface{ isRequest() }

type createRoomReq struct {
	Username string
}

type joinRoomReq struct {
	Room     string `validate:"required"`
	Username string
}

type leaveRoomReq struct{}

type broadcastReq struct {
	Data map[string]any
}

type syncStartReq struct{}

type syncStopReq struct{}

type syncBPMReq struct {
	BPM    int
	HasBPM bool
}

type deleteRoomReq struct{}

func (createRoomReq) isRequest() {}
func (joinRoomReq) isRequest()   {}
func (leaveRoomReq) isRequest()  {}
func (broadcastReq) isRequest()  {}
func (syncStartReq) isRequest()  {}
func (syncStopReq) isRequest()   {}
func (syncBPMReq) isRequest()    {}
func (deleteRoomReq) isRequest() {}

// parseRequest maps one inbound frame onto a typed request. Malformed JSON
// and unknown actions collapse into the same errInvalidAction; the protocol
// does not distinguish them.
func parseRequest(raw []byte) (request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errInvalidAction
	}

	switch env.Action {
	case "createRoom":
		return createRoomReq{Username: env.Username}, nil
	case "joinRoom":
		req := joinRoomReq{Room: env.Room, Username: env.Username}
		if err := validate.Struct(req); err != nil {
			return nil, errRoomCodeRequired
		}
		return req, nil
	case "leaveRoom":
		return leaveRoomReq{}, nil
	case "broadcast":
		return broadcastReq{Data: env.Data}, nil
	case "syncStart":
		return syncStartReq{}, nil
	case "syncStop":
		return syncStopReq{}, nil
	case "syncBPM":
		bpm, ok := numericBPM(env.BPM)
		return syncBPMReq{BPM: bpm, HasBPM: ok}, nil
	case "deleteRoom":
		return deleteRoomReq{}, nil
	default:
		return nil, errInvalidAction
	}
}

// numericBPM accepts a JSON number or a numeric string, which is what the
// various clients actually send.
func numericBPM(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return int(v), true
		}
	}
	return 0, false
}

// Outbound shapes. Every message carries a discriminating "type" field.

type roomCreatedMsg struct {
	Type     string `json:"type"`
	RoomCode string `json:"room_code"`
	IsOwner  bool   `json:"isOwner"`
	Username string `json:"username"`
}

type joinSuccessMsg struct {
	Type     string `json:"type"`
	Room     string `json:"room"`
	Username string `json:"username"`
	IsOwner  bool   `json:"isOwner"`
}

type currentUsersMsg struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type userJoinedMsg struct {
	Type     string `json:"type"`
	Room     string `json:"room"`
	Username string `json:"username"`
}

type leaveSuccessMsg struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type userLeftMsg struct {
	Type     string `json:"type"`
	Room     string `json:"room"`
	Username string `json:"username"`
	ConnID   string `json:"conn_id"`
}

type syncStartMsg struct {
	Type          string `json:"type"`
	ConnID        string `json:"conn_id"`
	SyncStartTime int64  `json:"sync_start_time"`
}

type syncStopMsg struct {
	Type   string `json:"type"`
	ConnID string `json:"conn_id"`
}

type syncBPMMsg struct {
	Type   string `json:"type"`
	ConnID string `json:"conn_id"`
	BPM    int    `json:"bpm"`
}

type roomDeletedMsg struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encode(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func encodeError(message string) []byte {
	return encode(errorMsg{Type: "error", Message: message})
}

// encodeBroadcast merges the caller-supplied payload over a broadcast
// envelope; a "type" key in the payload wins the collision.
func encodeBroadcast(data map[string]any) []byte {
	out := make(map[string]any, len(data)+1)
	out["type"] = "broadcast"
	for k, v := range data {
		out[k] = v
	}
	return encode(out)
}
