package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_Create_CodeFormat(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := rr.Create("conn-1")
		req.NoError(err)
		req.Len(code, 8)
		req.Regexp(`^\d{8}$`, code)
		req.False(seen[code], "codes must be unique among live rooms")
		seen[code] = true
	}
}

func TestRoomRegistry_Create_OwnerIsFirstMember(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	code, err := rr.Create("conn-1")
	req.NoError(err)

	room, ok := rr.Get(code)
	req.True(ok)
	req.True(room.Has("conn-1"))
	req.Equal("conn-1", rr.Owner(code))
	req.False(rr.LastActive(code).IsZero())
}

func TestRoomRegistry_Create_RoomLimit(t *testing.T) {
	req := require.New(t)
	cfg := testConfig()
	cfg.MaxRooms = 2
	rr := NewRoomRegistry(cfg)

	_, err := rr.Create("a")
	req.NoError(err)
	_, err = rr.Create("b")
	req.NoError(err)

	_, err = rr.Create("c")
	req.ErrorIs(err, ErrServerFull)
}

func TestRoomRegistry_Join_StrictUnknownCode(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	_, err := rr.Join("99999999", "conn-1")
	req.ErrorIs(err, ErrRoomNotFound)
	req.Zero(rr.Count())
}

func TestRoomRegistry_Join_AutoCreate(t *testing.T) {
	req := require.New(t)
	cfg := testConfig()
	cfg.AutoCreateRooms = true
	rr := NewRoomRegistry(cfg)

	res, err := rr.Join("12345678", "conn-1")
	req.NoError(err)
	req.True(res.IsOwner, "joiner of an auto-created room becomes owner")
	req.Empty(res.Others)
	req.Equal("conn-1", rr.Owner("12345678"))

	res, err = rr.Join("12345678", "conn-2")
	req.NoError(err)
	req.False(res.IsOwner)
	req.Equal([]string{"conn-1"}, res.Others)
}

func TestRoomRegistry_Join_RoomFull(t *testing.T) {
	req := require.New(t)
	cfg := testConfig()
	cfg.MaxClientsPerRoom = 2
	rr := NewRoomRegistry(cfg)

	code, err := rr.Create("a")
	req.NoError(err)

	_, err = rr.Join(code, "b")
	req.NoError(err)

	_, err = rr.Join(code, "c")
	req.ErrorIs(err, ErrRoomFull)

	// An existing member re-joining is not a capacity violation.
	_, err = rr.Join(code, "b")
	req.NoError(err)
}

func TestRoomRegistry_Leave_LastMemberDestroysRoom(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	code, err := rr.Create("conn-1")
	req.NoError(err)

	res, ok := rr.Leave(code, "conn-1")
	req.True(ok)
	req.True(res.Destroyed)
	req.Empty(res.Remaining)

	_, exists := rr.Get(code)
	req.False(exists)
	req.Empty(rr.Owner(code), "no dangling owner entry")
	req.True(rr.LastActive(code).IsZero(), "no dangling last-active entry")
}

func TestRoomRegistry_Leave_OwnerDestroysRoomWithMembersLeft(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	code, err := rr.Create("owner")
	req.NoError(err)
	_, err = rr.Join(code, "guest-1")
	req.NoError(err)
	_, err = rr.Join(code, "guest-2")
	req.NoError(err)

	res, ok := rr.Leave(code, "owner")
	req.True(ok)
	req.True(res.Destroyed)
	// Departure notices are computed after the removal, before teardown.
	req.ElementsMatch([]string{"guest-1", "guest-2"}, res.Remaining)

	_, exists := rr.Get(code)
	req.False(exists)
}

func TestRoomRegistry_Leave_NonOwnerKeepsRoom(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	code, err := rr.Create("owner")
	req.NoError(err)
	_, err = rr.Join(code, "guest")
	req.NoError(err)

	res, ok := rr.Leave(code, "guest")
	req.True(ok)
	req.False(res.Destroyed)
	req.Equal([]string{"owner"}, res.Remaining)

	room, exists := rr.Get(code)
	req.True(exists)
	req.Equal(1, room.Count())
}

func TestRoomRegistry_Leave_UnknownIsNoop(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	_, ok := rr.Leave("00000000", "conn-1")
	req.False(ok)

	code, err := rr.Create("owner")
	req.NoError(err)
	_, ok = rr.Leave(code, "stranger")
	req.False(ok)
}

func TestRoomRegistry_Touch(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	code, err := rr.Create("conn-1")
	req.NoError(err)

	stale := time.Now().Add(-time.Hour)
	rr.lastActive[code] = stale

	req.True(rr.Touch(code))
	req.True(rr.LastActive(code).After(stale))

	req.False(rr.Touch("99999999"))
}

func TestRoomRegistry_Reap_IdleAndEmpty(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(testConfig())

	stale, err := rr.Create("a")
	req.NoError(err)
	rr.lastActive[stale] = time.Now().Add(-2 * time.Hour)

	fresh, err := rr.Create("b")
	req.NoError(err)

	empty, err := rr.Create("c")
	req.NoError(err)
	room, _ := rr.Get(empty)
	room.Remove("c")

	reaped := rr.Reap(time.Hour)
	req.Len(reaped, 2)
	req.Contains(reaped, stale)
	req.Contains(reaped, empty)
	req.Equal([]string{"a"}, reaped[stale])

	_, ok := rr.Get(fresh)
	req.True(ok, "recently active room must survive the sweep")
	req.Equal(1, rr.Count())
}
