package main

// Room holds the membership of one live room. Members are kept in join
// order so the initial-sync user list is stable. Owner and last-active
// bookkeeping live in the RoomRegistry beside the room itself.
type Room struct {
	code    string
	order   []string
	members map[string]struct{}
}

func NewRoom(code string) *Room {
	return &Room{
		code:    code,
		members: make(map[string]struct{}),
	}
}

func (r *Room) Add(connID string) {
	if _, ok := r.members[connID]; ok {
		return
	}
	r.members[connID] = struct{}{}
	r.order = append(r.order, connID)
}

func (r *Room) Remove(connID string) {
	if _, ok := r.members[connID]; !ok {
		return
	}
	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Room) Has(connID string) bool {
	_, ok := r.members[connID]
	return ok
}

func (r *Room) Count() int {
	return len(r.members)
}

// Members returns the connection IDs in join order. The slice is a copy;
// callers may hold it across mutations.
func (r *Room) Members() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Others returns all members except the given connection, in join order.
func (r *Room) Others(connID string) []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if id != connID {
			out = append(out, id)
		}
	}
	return out
}
