// E2E test: drives two WebSocket clients through the room protocol against
// a live server: create, join, syncStart, syncBPM, leave.
// Usage: go run ./cmd/e2etest -server ws://localhost:8080/ws
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var serverURL = flag.String("server", "ws://localhost:8080/ws", "server WebSocket URL")

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	suffix := uuid.NewString()[:8]
	hostName := "host-" + suffix
	guestName := "guest-" + suffix

	// --- Connect both clients ---
	log.Println(">> Connecting host...")
	host, err := dial(*serverURL)
	if err != nil {
		log.Fatal("host connect:", err)
	}
	defer host.Close()
	log.Println("   Host connected ✓")

	log.Println(">> Connecting guest...")
	guest, err := dial(*serverURL)
	if err != nil {
		log.Fatal("guest connect:", err)
	}
	defer guest.Close()
	log.Println("   Guest connected ✓")

	// --- Host creates a room ---
	log.Println(">> Host creating room...")
	send(host, map[string]any{"action": "createRoom", "username": hostName})
	created := expect(host, "roomCreated")
	code, _ := created["room_code"].(string)
	if len(code) != 8 {
		log.Fatalf("bad room code %q", code)
	}
	if created["isOwner"] != true {
		log.Fatal("host should own the room")
	}
	log.Printf("   Room %s created ✓", code)

	// --- Guest joins ---
	log.Println(">> Guest joining...")
	send(guest, map[string]any{"action": "joinRoom", "room": code, "username": guestName})
	expect(guest, "joinSuccess")
	users := expect(guest, "currentUsers")
	log.Printf("   Guest joined, current users: %v ✓", users["users"])
	expect(host, "userJoined")
	log.Println("   Host notified of join ✓")

	// --- Host starts synchronized playback ---
	log.Println(">> Host starting playback sync...")
	send(host, map[string]any{"action": "syncStart"})
	hs := expect(host, "syncStart")
	gs := expect(guest, "syncStart")
	if hs["sync_start_time"] != gs["sync_start_time"] {
		log.Fatalf("start times differ: host=%v guest=%v",
			hs["sync_start_time"], gs["sync_start_time"])
	}
	log.Printf("   Playback start agreed at %v ✓", hs["sync_start_time"])

	// --- Guest relays a tempo change ---
	log.Println(">> Guest sending BPM...")
	send(guest, map[string]any{"action": "syncBPM", "bpm": 120})
	bpm := expect(host, "syncBPM")
	log.Printf("   Host received BPM %v ✓", bpm["bpm"])

	// --- Guest leaves ---
	log.Println(">> Guest leaving...")
	send(guest, map[string]any{"action": "leaveRoom"})
	expect(guest, "leaveSuccess")
	expect(host, "userLeft")
	log.Println("   Guest left, host notified ✓")

	fmt.Println()
	log.Println("═══════════════════════════════")
	log.Println("  E2E TEST PASSED ✓")
	log.Println("═══════════════════════════════")
	os.Exit(0)
}

func dial(u string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	return conn, err
}

func send(conn *websocket.Conn, v map[string]any) {
	b, _ := json.Marshal(v)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Fatal("send:", err)
	}
}

// expect reads frames until one of the wanted type arrives; a protocol
// error or timeout fails the run.
func expect(conn *websocket.Conn, msgType string) map[string]any {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %s: %v", msgType, err)
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Fatalf("bad frame %q: %v", raw, err)
		}
		if m["type"] == "error" {
			log.Fatalf("waiting for %s, got error: %v", msgType, m["message"])
		}
		if m["type"] == msgType {
			return m
		}
	}
}
