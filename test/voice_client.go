package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	userID := "smoke-test-user"

	// Step 1: Connect to the voice gateway
	fmt.Println("Step 1: Connecting to voice gateway...")

	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws/voice"}
	q := wsURL.Query()
	q.Set("user_id", userID)
	wsURL.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("Connection failed with status %d: %v", resp.StatusCode, err)
		}
		log.Fatalf("Connection failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, hello, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("Failed to read hello frame: %v", err)
	}
	fmt.Printf("✓ Connected: %s\n", string(hello))

	// Step 2: Send a client-side partial
	fmt.Println("Step 2: Sending partial frame...")
	if err := conn.WriteJSON(map[string]string{"type": "partial", "text": "crea"}); err != nil {
		log.Fatalf("Failed to send partial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, echo, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("Failed to read echo: %v", err)
	}
	fmt.Printf("✓ Echo: %s\n", string(echo))

	// Step 3: Stream enough audio chunks to trigger a transcription
	fmt.Println("Step 3: Streaming audio chunks...")
	chunk := base64.StdEncoding.EncodeToString(make([]byte, 640))
	for i := 0; i < 10; i++ {
		frame := map[string]string{"type": "audio_frame", "data": chunk}
		if err := conn.WriteJSON(frame); err != nil {
			log.Fatalf("Failed to send audio frame: %v", err)
		}
	}
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, partial, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}
	fmt.Printf("✓ Transcript: %s\n", string(partial))

	// Step 4: Finish the utterance and check intent detection
	fmt.Println("Step 4: Sending final frame...")
	if err := conn.WriteJSON(map[string]string{"type": "final", "text": "publish the draft blog post"}); err != nil {
		log.Fatalf("Failed to send final: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, final, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("Failed to read final result: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(final, &result); err != nil {
		log.Fatalf("Final frame is not JSON: %v", err)
	}
	fmt.Printf("✓ Intent result: %s\n", string(final))

	fmt.Println("✓ All voice gateway checks passed!")
}
