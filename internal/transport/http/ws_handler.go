package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"wordclash-service/internal/domain"
	"wordclash-service/internal/game"
)

// WSHandler is the gateway between websocket clients and the game engine.
// Each connection carries one authenticated user (identity established by the
// caller) and is attached to at most one room channel at a time.
type WSHandler struct {
	engine   *game.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *game.Engine) *WSHandler {
	return &WSHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type createRoomPayload struct {
	Settings domain.Settings `json:"settings"`
}

type joinRoomPayload struct {
	Code        string `json:"code"`
	IsSpectator bool   `json:"isSpectator"`
}

type codePayload struct {
	Code string `json:"code"`
}

type answerPayload struct {
	Code       string  `json:"code"`
	QuestionID string  `json:"questionId"`
	Answer     string  `json:"answer"`
	TimeSpent  float64 `json:"timeSpent"`
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// errorCode maps domain errors to machine-readable codes for clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room-not-found"
	case errors.Is(err, domain.ErrNotAuthorized):
		return "not-authorized"
	case errors.Is(err, domain.ErrGameAlreadyStarted):
		return "game-already-started"
	case errors.Is(err, domain.ErrGameNotActive):
		return "game-not-active"
	case errors.Is(err, domain.ErrNotAPlayer):
		return "not-a-player"
	case errors.Is(err, domain.ErrInvalidSettings):
		return "invalid-settings"
	case errors.Is(err, domain.ErrInsufficientJokerPoints):
		return "insufficient-joker-points"
	case errors.Is(err, domain.ErrPackNotFound):
		return "pack-not-found"
	default:
		return ""
	}
}

// ServeWS upgrades the request and runs the action loop for one client.
// Outbound broadcasts from the attached room are pumped through a single
// writer goroutine so the connection never sees concurrent writes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	username := r.URL.Query().Get("name")
	if userID == "" || username == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 32)
	closed := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	sendErr := func(err error) {
		select {
		case send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error(), Code: errorCode(err)}}:
		case <-closed:
		}
	}

	// detach stops the current room pump, if any. Only the read loop calls
	// attach/detach, so no locking is needed.
	var detach func()
	attach := func(code string) {
		events, cancel, err := h.engine.Subscribe(code)
		if err != nil {
			sendErr(err)
			return
		}
		if detach != nil {
			detach()
		}
		pumpDone := make(chan struct{})
		go func() {
			defer close(pumpDone)
			for {
				select {
				case event, ok := <-events:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage{Type: event.Type, Payload: event.Payload}:
					case <-closed:
						return
					}
				case <-closed:
					return
				}
			}
		}()
		detach = func() {
			cancel()
			<-pumpDone
			detach = nil
		}
	}

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "create-room":
			var payload createRoomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid create-room payload"))
				continue
			}
			state, err := h.engine.CreateRoom(ctx, userID, username, payload.Settings)
			if err != nil {
				sendErr(err)
				continue
			}
			attach(state.Code)
		case "join-room":
			var payload joinRoomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid join-room payload"))
				continue
			}
			if _, err := h.engine.Join(ctx, payload.Code, userID, username, payload.IsSpectator); err != nil {
				sendErr(err)
				continue
			}
			attach(payload.Code)
		case "leave-room":
			var payload codePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid leave-room payload"))
				continue
			}
			h.engine.Leave(ctx, payload.Code, userID)
			if detach != nil {
				detach()
			}
		case "start-game":
			var payload codePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid start-game payload"))
				continue
			}
			if err := h.engine.StartGame(ctx, payload.Code, userID); err != nil {
				sendErr(err)
			}
		case "submit-answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid submit-answer payload"))
				continue
			}
			if err := h.engine.SubmitAnswer(ctx, payload.Code, userID, payload.Answer, payload.TimeSpent); err != nil {
				sendErr(err)
			}
		case "use-joker":
			var payload codePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid use-joker payload"))
				continue
			}
			reveal, err := h.engine.UseJoker(ctx, payload.Code, userID)
			if err != nil {
				sendErr(err)
				continue
			}
			select {
			case send <- outboundMessage{Type: "joker-used", Payload: reveal}:
			case <-closed:
			}
		case "next-round":
			var payload codePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sendErr(errors.New("invalid next-round payload"))
				continue
			}
			if err := h.engine.ForceAdvance(ctx, payload.Code, userID); err != nil {
				sendErr(err)
			}
		default:
			sendErr(errors.New("unsupported message type"))
		}
	}

	// Disconnects do not leave the room: rejoining with the same userId
	// refreshes the binding, so a dropped client can resume.
	close(closed)
	if detach != nil {
		detach()
	}
	close(send)
	<-writerDone
}
