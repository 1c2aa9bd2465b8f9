// Command buildwatch connects to a running buildgraphgo progress
// dashboard and prints every StepResult transition as it arrives.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/vk/buildgraphgo/internal/progress"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8080/progress", "WebSocket URL of a buildgraphgo progress dashboard.")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("buildwatch: connecting to %s: %v", *addr, err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("buildwatch: connection closed: %v", err)
				return
			}
			var evt progress.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("buildwatch: malformed event: %v", err)
				continue
			}
			fmt.Printf("%-34s %-40s %s\n", evt.Step, evt.Artifact, evt.Marker)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
