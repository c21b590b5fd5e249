package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrServerFull   = errors.New("room limit reached")
)

// RoomRegistry owns the three per-room maps: membership, owner and
// last-active stamp. The maps are mutated together so a live room always
// has exactly one entry in each. Not safe for concurrent use; the hub
// serializes all access.
type RoomRegistry struct {
	autoCreate bool
	maxRooms   int
	maxMembers int

	rooms      map[string]*Room
	owners     map[string]string
	lastActive map[string]time.Time
}

func NewRoomRegistry(cfg *Config) *RoomRegistry {
	return &RoomRegistry{
		autoCreate: cfg.AutoCreateRooms,
		maxRooms:   cfg.MaxRooms,
		maxMembers: cfg.MaxClientsPerRoom,
		rooms:      make(map[string]*Room),
		owners:     make(map[string]string),
		lastActive: make(map[string]time.Time),
	}
}

// Create registers an empty room with the requesting connection as owner
// and first member, returning the fresh 8-digit code.
func (rr *RoomRegistry) Create(connID string) (string, error) {
	if len(rr.rooms) >= rr.maxRooms {
		return "", ErrServerFull
	}

	code := rr.newCode()
	room := NewRoom(code)
	room.Add(connID)

	rr.rooms[code] = room
	rr.owners[code] = connID
	rr.lastActive[code] = time.Now()
	return code, nil
}

// newCode draws 8-digit decimal codes until one is free among live rooms.
func (rr *RoomRegistry) newCode() string {
	for {
		code := fmt.Sprintf("%08d", rand.Intn(100000000))
		if _, taken := rr.rooms[code]; !taken {
			return code
		}
	}
}

// JoinResult describes a successful join: whether the joiner owns the room
// (auto-create path) and which members existed before the join, in join
// order, for the initial user-list sync and the userJoined fan-out.
type JoinResult struct {
	IsOwner bool
	Others  []string
}

// Join adds the connection to the room under the configured policy. With
// auto-create off an unknown code fails with ErrRoomNotFound; with it on
// the joiner becomes owner of a fresh room under that code.
func (rr *RoomRegistry) Join(code, connID string) (*JoinResult, error) {
	room, ok := rr.rooms[code]
	if !ok {
		if !rr.autoCreate {
			return nil, ErrRoomNotFound
		}
		if len(rr.rooms) >= rr.maxRooms {
			return nil, ErrServerFull
		}
		room = NewRoom(code)
		rr.rooms[code] = room
		rr.owners[code] = connID
	}

	if !room.Has(connID) && room.Count() >= rr.maxMembers {
		return nil, ErrRoomFull
	}

	others := room.Others(connID)
	room.Add(connID)
	rr.lastActive[code] = time.Now()

	return &JoinResult{
		IsOwner: rr.owners[code] == connID,
		Others:  others,
	}, nil
}

// LeaveResult carries the members remaining immediately after the removal
// (the departure notification list) and whether the room was destroyed.
// Remaining is computed before destruction so departure notices still go
// out when the owner's exit tears the room down.
type LeaveResult struct {
	Remaining []string
	Destroyed bool
}

// Leave removes the member from the room. The room is destroyed when it is
// left empty or when the departing connection was the owner.
func (rr *RoomRegistry) Leave(code, connID string) (*LeaveResult, bool) {
	room, ok := rr.rooms[code]
	if !ok || !room.Has(connID) {
		return nil, false
	}

	room.Remove(connID)
	rr.lastActive[code] = time.Now()

	res := &LeaveResult{Remaining: room.Members()}
	if room.Count() == 0 || rr.owners[code] == connID {
		rr.Destroy(code)
		res.Destroyed = true
	}
	return res, true
}

// Touch stamps the room's last-active time. Returns false for dead codes.
func (rr *RoomRegistry) Touch(code string) bool {
	if _, ok := rr.rooms[code]; !ok {
		return false
	}
	rr.lastActive[code] = time.Now()
	return true
}

// Destroy removes the room and its owner/last-active entries together,
// returning the members it still had so the caller can clear their
// sessions.
func (rr *RoomRegistry) Destroy(code string) []string {
	room, ok := rr.rooms[code]
	if !ok {
		return nil
	}
	members := room.Members()
	delete(rr.rooms, code)
	delete(rr.owners, code)
	delete(rr.lastActive, code)
	return members
}

// Reap destroys every empty room and every room idle longer than the
// timeout, returning the orphaned member connection IDs per room code.
func (rr *RoomRegistry) Reap(idleTimeout time.Duration) map[string][]string {
	now := time.Now()
	reaped := make(map[string][]string)
	for code, room := range rr.rooms {
		if room.Count() == 0 || now.Sub(rr.lastActive[code]) > idleTimeout {
			reaped[code] = rr.Destroy(code)
		}
	}
	return reaped
}

func (rr *RoomRegistry) Get(code string) (*Room, bool) {
	room, ok := rr.rooms[code]
	return room, ok
}

func (rr *RoomRegistry) Owner(code string) string {
	return rr.owners[code]
}

func (rr *RoomRegistry) LastActive(code string) time.Time {
	return rr.lastActive[code]
}

func (rr *RoomRegistry) Count() int {
	return len(rr.rooms)
}
