package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/samber/lo"
)

type eventKind int

const (
	evConnect eventKind = iota
	evMessage
	evDisconnect
)

// event is the single mailbox item consumed by the hub loop. Funneling
// connects, messages and disconnects through one channel preserves
// per-connection ordering: a Connect always lands before its first Message.
type event struct {
	kind   eventKind
	client *Client
	data   []byte
}

// Hub is the protocol state machine. It owns the room and session
// registries and is the only goroutine that touches them; the mutex exists
// for the read-only counters exposed to the HTTP layer.
type Hub struct {
	cfg *Config

	mu       sync.RWMutex
	rooms    *RoomRegistry
	sessions *SessionRegistry
	clients  map[string]*Client

	events chan event
}

func NewHub(cfg *Config) *Hub {
	return &Hub{
		cfg:      cfg,
		rooms:    NewRoomRegistry(cfg),
		sessions: NewSessionRegistry(),
		clients:  make(map[string]*Client),
		events:   make(chan event, 2048),
	}
}

func (h *Hub) Connect(c *Client) {
	h.events <- event{kind: evConnect, client: c}
}

func (h *Hub) Disconnect(c *Client) {
	h.events <- event{kind: evDisconnect, client: c}
}

func (h *Hub) Inbound(c *Client, data []byte) {
	h.events <- event{kind: evMessage, client: c, data: data}
}

func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case ev := <-h.events:
			switch ev.kind {
			case evConnect:
				h.handleConnect(ev.client)
			case evMessage:
				h.handleMessage(ev.client, ev.data)
			case evDisconnect:
				h.handleDisconnect(ev.client)
			}

		case <-ticker.C:
			h.reap()
		}
	}
}

func (h *Hub) handleConnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.connID] = c
	h.sessions.Connect(c.connID)
	log.Printf("client connected: %s", c.connID)
}

// handleDisconnect is terminal and idempotent: an implicit leave of the
// current room, then the session is discarded.
func (h *Hub) handleDisconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions.Get(c.connID); ok && sess.InRoom() {
		h.leave(sess, false)
	}
	h.sessions.Disconnect(c.connID)
	delete(h.clients, c.connID)
	c.Close()
	log.Printf("client disconnected: %s", c.connID)
}

func (h *Hub) handleMessage(c *Client, raw []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions.Get(c.connID)
	if !ok {
		return
	}

	req, err := parseRequest(raw)
	if err != nil {
		h.sendTo(c.connID, encodeError(err.Error()))
		return
	}

	switch req := req.(type) {
	case createRoomReq:
		h.createRoom(sess, req)
	case joinRoomReq:
		h.joinRoom(sess, req)
	case leaveRoomReq:
		if sess.InRoom() {
			h.leave(sess, true)
		}
	case broadcastReq:
		h.broadcast(sess, req)
	case syncStartReq:
		h.syncStart(sess)
	case syncStopReq:
		h.syncStop(sess)
	case syncBPMReq:
		h.syncBPM(sess, req)
	case deleteRoomReq:
		h.deleteRoom(sess)
	}
}

func (h *Hub) createRoom(sess *Session, req createRoomReq) {
	if sess.InRoom() {
		h.leave(sess, false)
	}
	sess.Username = displayName(req.Username, sess.ConnID)

	code, err := h.rooms.Create(sess.ConnID)
	if err != nil {
		h.sendTo(sess.ConnID, encodeError("Server is full"))
		return
	}
	sess.Room = code

	h.sendTo(sess.ConnID, encode(roomCreatedMsg{
		Type:     "roomCreated",
		RoomCode: code,
		IsOwner:  true,
		Username: sess.Username,
	}))
	log.Printf("room %s created by %s", code, sess.ConnID)
}

func (h *Hub) joinRoom(sess *Session, req joinRoomReq) {
	if sess.InRoom() && sess.Room != req.Room {
		h.leave(sess, false)
	}
	sess.Username = displayName(req.Username, sess.ConnID)

	res, err := h.rooms.Join(req.Room, sess.ConnID)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		h.sendTo(sess.ConnID, encodeError("Room not found"))
		return
	case errors.Is(err, ErrRoomFull):
		h.sendTo(sess.ConnID, encodeError("Room is full"))
		return
	case err != nil:
		h.sendTo(sess.ConnID, encodeError("Server is full"))
		return
	}
	sess.Room = req.Room

	h.sendTo(sess.ConnID, encode(joinSuccessMsg{
		Type:     "joinSuccess",
		Room:     req.Room,
		Username: sess.Username,
		IsOwner:  res.IsOwner,
	}))

	users := lo.Map(res.Others, func(id string, _ int) string {
		return h.sessions.Username(id)
	})
	h.sendTo(sess.ConnID, encode(currentUsersMsg{Type: "currentUsers", Users: users}))

	h.deliver(res.Others, encode(userJoinedMsg{
		Type:     "userJoined",
		Room:     req.Room,
		Username: sess.Username,
	}))
	log.Printf("%s joined room %s", sess.ConnID, req.Room)
}

// leave removes the session from its room, emits departure notices, and
// lets the registry apply the destruction rules. The remaining-member list
// is computed before any destruction so notices still go out when the
// owner's exit tears the room down.
func (h *Hub) leave(sess *Session, explicit bool) {
	code := sess.Room
	res, ok := h.rooms.Leave(code, sess.ConnID)
	sess.Room = ""
	if !ok {
		return
	}

	if explicit {
		h.sendTo(sess.ConnID, encode(leaveSuccessMsg{Type: "leaveSuccess", Room: code}))
	}
	h.deliver(res.Remaining, encode(userLeftMsg{
		Type:     "userLeft",
		Room:     code,
		Username: sess.Username,
		ConnID:   sess.ConnID,
	}))

	if res.Destroyed {
		h.sessions.ClearRoom(res.Remaining)
		log.Printf("room %s destroyed (owner left or empty)", code)
	}
}

func (h *Hub) broadcast(sess *Session, req broadcastReq) {
	room, ok := h.memberRoom(sess)
	if !ok {
		return
	}
	h.rooms.Touch(sess.Room)
	h.deliver(room.Others(sess.ConnID), encodeBroadcast(req.Data))
}

func (h *Hub) syncStart(sess *Session) {
	room, ok := h.memberRoom(sess)
	if !ok {
		return
	}
	h.rooms.Touch(sess.Room)

	// One timestamp for the whole room, placed in the near future so every
	// member holds it before it passes.
	startAt := time.Now().Add(h.cfg.SyncStartDelay).UnixMilli()
	h.deliver(room.Members(), encode(syncStartMsg{
		Type:          "syncStart",
		ConnID:        sess.ConnID,
		SyncStartTime: startAt,
	}))
}

func (h *Hub) syncStop(sess *Session) {
	room, ok := h.memberRoom(sess)
	if !ok {
		return
	}
	h.rooms.Touch(sess.Room)
	h.deliver(room.Members(), encode(syncStopMsg{Type: "syncStop", ConnID: sess.ConnID}))
}

func (h *Hub) syncBPM(sess *Session, req syncBPMReq) {
	room, ok := h.memberRoom(sess)
	if !ok || !req.HasBPM {
		return
	}
	h.rooms.Touch(sess.Room)
	h.deliver(room.Others(sess.ConnID), encode(syncBPMMsg{
		Type:   "syncBPM",
		ConnID: sess.ConnID,
		BPM:    req.BPM,
	}))
}

func (h *Hub) deleteRoom(sess *Session) {
	room, ok := h.memberRoom(sess)
	if !ok {
		return
	}
	code := sess.Room

	// Members are told before the room is torn down; the other way around
	// the deletion notice would observe an empty member set.
	h.deliver(room.Members(), encode(roomDeletedMsg{Type: "roomDeleted", Room: code}))
	members := h.rooms.Destroy(code)
	h.sessions.ClearRoom(members)
	log.Printf("room %s deleted by %s", code, sess.ConnID)
}

// reap is the silent GC path: no messages go out, but orphaned sessions
// are still cleared.
func (h *Hub) reap() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for code, members := range h.rooms.Reap(h.cfg.RoomIdleTimeout) {
		h.sessions.ClearRoom(members)
		log.Printf("room %s reaped (idle or empty)", code)
	}
}

func (h *Hub) memberRoom(sess *Session) (*Room, bool) {
	if !sess.InRoom() {
		return nil, false
	}
	return h.rooms.Get(sess.Room)
}

// sendTo queues a frame for one connection. Best effort: a full buffer or
// missing client never blocks the dispatch loop or sibling deliveries.
func (h *Hub) sendTo(connID string, data []byte) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) deliver(connIDs []string, data []byte) {
	for _, id := range connIDs {
		h.sendTo(id, data)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		c.Close()
	}
	h.clients = make(map[string]*Client)
	h.sessions = NewSessionRegistry()
	h.rooms = NewRoomRegistry(h.cfg)
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms.Count()
}

func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions.Count()
}

// displayName falls back to a name derived from the connection ID tail
// when the client supplies none.
func displayName(username, connID string) string {
	if username != "" {
		return username
	}
	tail := connID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return "guest-" + tail
}
