// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/inertial_compass/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// headingHub keeps the latest heading and fans it out to websocket clients.
type headingHub struct {
	mu   sync.RWMutex
	last HeadingMessage
	have bool
	subs map[chan HeadingMessage]struct{}
}

func newHeadingHub() *headingHub {
	return &headingHub{subs: make(map[chan HeadingMessage]struct{})}
}

// update stores m and offers it to every subscriber. Slow clients miss
// intermediate headings rather than blocking MQTT delivery.
func (h *headingHub) update(m HeadingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = m
	h.have = true
	for ch := range h.subs {
		select {
		case ch <- m:
		default:
		}
	}
}

func (h *headingHub) latest() (HeadingMessage, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *headingHub) subscribe() (<-chan HeadingMessage, func()) {
	ch := make(chan HeadingMessage, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// WebSocket message types
type wsRequest struct {
	Action      string  `json:"action"` // set_declination
	Declination float64 `json:"declination_deg,omitempty"`
}

type wsResponse struct {
	Type    string          `json:"type"` // heading, ack, error
	Heading *HeadingMessage `json:"heading,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (h *headingHub) handleHeading(w http.ResponseWriter, r *http.Request) {
	m, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS pushes every heading to the client and accepts manual
// declination changes, which setDeclination forwards to the producer.
func (h *headingHub) handleWS(setDeclination func(float64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		updates, unsubscribe := h.subscribe()
		defer unsubscribe()

		if m, ok := h.latest(); ok {
			if err := conn.WriteJSON(wsResponse{Type: "heading", Heading: &m}); err != nil {
				return
			}
		}

		// Only this goroutine writes to conn; the reader hands replies over.
		replies := make(chan wsResponse, 4)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var req wsRequest
				if err := conn.ReadJSON(&req); err != nil {
					return
				}
				select {
				case replies <- h.handleRequest(req, setDeclination):
				default:
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case resp := <-replies:
				if err := conn.WriteJSON(resp); err != nil {
					log.Printf("web: websocket write error: %v", err)
					return
				}
			case m := <-updates:
				if err := conn.WriteJSON(wsResponse{Type: "heading", Heading: &m}); err != nil {
					log.Printf("web: websocket write error: %v", err)
					return
				}
			}
		}
	}
}

func (h *headingHub) handleRequest(req wsRequest, setDeclination func(float64) error) wsResponse {
	switch req.Action {
	case "set_declination":
		if err := setDeclination(req.Declination); err != nil {
			return wsResponse{Type: "error", Message: err.Error()}
		}
		return wsResponse{Type: "ack", Message: fmt.Sprintf("declination %.2f° sent", req.Declination)}
	default:
		return wsResponse{Type: "error", Message: fmt.Sprintf("unknown action %q", req.Action)}
	}
}

func newWebMux(h *headingHub, setDeclination func(float64) error, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/heading", h.handleHeading)
	mux.HandleFunc("/ws", h.handleWS(setDeclination))
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func RunWeb() error {
	cfg := config.Get()
	hub := newHeadingHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the heading topic and fan out each message
	token := client.Subscribe(cfg.TopicHeading, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m HeadingMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Printf("web: MQTT payload unmarshal error: %v", err)
			return
		}
		hub.update(m)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicHeading)

	setDeclination := func(deg float64) error {
		return publishJSON(client, cfg.TopicDeclination, DeclinationMessage{Declination: deg, Source: "manual"})
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(hub, setDeclination, "web"))
}
