// Package main provides a small CLI that tails the live comment feed for a
// post, useful for checking moderation wiring end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type feedSnapshot struct {
	Type     string `json:"type"`
	PostID   uint   `json:"post_id"`
	Comments []struct {
		ID      uint   `json:"id"`
		Author  string `json:"author"`
		Content string `json:"content"`
	} `json:"comments"`
}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	postID := flag.Uint("post", 1, "Post ID to watch")
	flag.Parse()

	u := url.URL{
		Scheme: "ws",
		Host:   *host,
		Path:   fmt.Sprintf("/api/ws/comments/%d", *postID),
	}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("❌ Dial failed: %v", err)
	}
	defer conn.Close()
	log.Printf("✅ Watching comment feed for post %d", *postID)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			printSnapshot(raw)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("🛑 Interrupted, closing connection")
		err := conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Printf("close: %v", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printSnapshot(raw []byte) {
	var snap feedSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("unparseable message: %s", raw)
		return
	}
	log.Printf("snapshot for post %d: %d approved comment(s)", snap.PostID, len(snap.Comments))
	for _, c := range snap.Comments {
		log.Printf("  #%d %s: %s", c.ID, c.Author, c.Content)
	}
}
