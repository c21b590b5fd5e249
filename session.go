package main

// Session is the per-connection state: who the connection claims to be and
// which room (if any) it currently occupies. Room is "" unless the session
// is listed in that room's members.
type Session struct {
	ConnID   string
	Username string
	Room     string
}

// InRoom reports whether the session currently occupies a room.
func (s *Session) InRoom() bool {
	return s.Room != ""
}

// SessionRegistry tracks the connect/disconnect lifecycle. It is not safe
// for concurrent use; all access is serialized by the hub.
type SessionRegistry struct {
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Connect creates an empty session bound to the connection identifier.
func (sr *SessionRegistry) Connect(connID string) *Session {
	s := &Session{ConnID: connID}
	sr.sessions[connID] = s
	return s
}

// Disconnect discards the session entirely. Idempotent.
func (sr *SessionRegistry) Disconnect(connID string) {
	delete(sr.sessions, connID)
}

func (sr *SessionRegistry) Get(connID string) (*Session, bool) {
	s, ok := sr.sessions[connID]
	return s, ok
}

// Username resolves a connection to its display name, "" if unknown.
func (sr *SessionRegistry) Username(connID string) string {
	if s, ok := sr.sessions[connID]; ok {
		return s.Username
	}
	return ""
}

// ClearRoom drops the current-room reference of every listed session, used
// when a room is destroyed out from under its members.
func (sr *SessionRegistry) ClearRoom(connIDs []string) {
	for _, id := range connIDs {
		if s, ok := sr.sessions[id]; ok {
			s.Room = ""
		}
	}
}

func (sr *SessionRegistry) Count() int {
	return len(sr.sessions)
}
