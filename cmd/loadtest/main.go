// Package main is a load tool for the realtime notification stream. It opens
// many sockets for one account, pings them, and optionally sends direct
// messages so every socket should observe a message_created event.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the run results.
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	PingsSent            int64
	MessagesPosted       int64
	Errors               int64

	mu     sync.Mutex
	events map[string]int64
}

func (m *Metrics) countEvent(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = make(map[string]int64)
	}
	m.events[eventType]++
}

var metrics Metrics

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "password123", "Account password")
	clients := flag.Int("clients", 50, "Number of concurrent sockets")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	partner := flag.Uint("partner", 0, "Profile id to message every interval (0 disables)")
	interval := flag.Duration("interval", 5*time.Second, "Ping and message interval")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	log.Printf("🚀 Starting realtime load test against %s with %d sockets for %v", *host, *clients, *duration)

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in as %s", *email)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, *interval, stop, &wg)
		// Stagger so ticket issuance stays under the server's limits.
		time.Sleep(20 * time.Millisecond)
	}

	if *partner != 0 {
		wg.Add(1)
		go postMessages(*host, token, *partner, *interval, stop, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("⏱️  Test duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted")
	}

	close(stop)
	wg.Wait()
	printMetrics()
}

func postJSON(host, path, token string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s%s", host, path), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func login(host, email, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	if err := postJSON(host, "/api/auth/login", "", map[string]string{"email": email, "password": password}, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := postJSON(host, "/api/ws/ticket", token, nil, &result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(host, token string, interval time.Duration, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	ticket, err := getTicket(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "ticket=" + url.QueryEscape(ticket)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			var ev struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &ev) != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			metrics.countEvent(ev.Type)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if err := c.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
			atomic.AddInt64(&metrics.PingsSent, 1)
		}
	}
}

func postMessages(host, token string, partner uint, interval time.Duration, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			body := map[string]any{"receiver_id": partner, "content": fmt.Sprintf("load test message %d", n)}
			if err := postJSON(host, "/api/messages", token, body, nil); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.MessagesPosted, 1)
		}
	}
}

func printMetrics() {
	log.Println("📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Pings Sent: %d", atomic.LoadInt64(&metrics.PingsSent))
	log.Printf("Messages Posted: %d", atomic.LoadInt64(&metrics.MessagesPosted))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	types := make([]string, 0, len(metrics.events))
	for t := range metrics.events {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.Printf("Events %-24s %d", t+":", metrics.events[t])
	}
}
