package main

import "testing"

func TestRoom_AddRemove(t *testing.T) {
	room := NewRoom("00000001")

	room.Add("conn-1")
	if room.Count() != 1 {
		t.Errorf("expected 1 member, got %d", room.Count())
	}

	room.Add("conn-2")
	if room.Count() != 2 {
		t.Errorf("expected 2 members, got %d", room.Count())
	}

	// Re-adding a member must not duplicate it.
	room.Add("conn-1")
	if room.Count() != 2 {
		t.Errorf("expected 2 members after re-add, got %d", room.Count())
	}

	room.Remove("conn-1")
	if room.Count() != 1 {
		t.Errorf("expected 1 member after remove, got %d", room.Count())
	}
	if room.Has("conn-1") {
		t.Error("conn-1 should be gone")
	}

	room.Remove("conn-2")
	if room.Count() != 0 {
		t.Errorf("expected 0 members, got %d", room.Count())
	}
}

func TestRoom_MembersInJoinOrder(t *testing.T) {
	room := NewRoom("00000002")
	room.Add("c")
	room.Add("a")
	room.Add("b")

	got := room.Members()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d: got %q, want %q", i, got[i], want[i])
		}
	}

	room.Remove("a")
	room.Add("a")
	got = room.Members()
	if got[len(got)-1] != "a" {
		t.Errorf("rejoined member should be last, got %v", got)
	}
}

func TestRoom_Others(t *testing.T) {
	room := NewRoom("00000003")
	room.Add("conn-1")
	room.Add("conn-2")
	room.Add("conn-3")

	others := room.Others("conn-2")
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(others))
	}
	for _, id := range others {
		if id == "conn-2" {
			t.Error("Others must exclude the given connection")
		}
	}
}
