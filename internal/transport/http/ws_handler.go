package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"web3-quiz-service/internal/app"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.QuizService, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service:  service,
		upgrader: newUpgrader(allowedOrigins),
		log:      log,
	}
}

// newUpgrader accepts any origin when allowedOrigins is empty.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Index *int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServePlay runs one quiz session over a websocket. The session is built from
// the play-link query, fetches its questions once, and is torn down when the
// socket closes or the client sends "end".
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	params, err := app.ResolveParams(app.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	player := PlayerFromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancelLoad := context.WithCancel(r.Context())
	defer cancelLoad()

	session := h.service.Open(params, player)
	log := h.log.With().Str("session", session.ID()).Str("category", params.Category).Logger()
	log.Info().Str("user", player.UserID).Msg("quiz session opened")

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()
	defer h.service.End(session.ID())

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	emit := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		resultSent := false
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if !emit(outboundMessage[any]{Type: "state", Payload: snap}) {
					return
				}
				if snap.Phase == app.PhaseCompleted && !snap.Submitting && !resultSent {
					resultSent = true
					if !emit(outboundMessage[any]{Type: "result", Payload: app.Present(snap)}) {
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go h.service.Load(ctx, session)

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Index == nil {
				emit(errorMessage("invalid select payload"))
				continue
			}
			if _, err := h.service.Select(session.ID(), *payload.Index); err != nil {
				emit(errorMessage(err.Error()))
			}
		case "submit":
			if _, err := h.service.Submit(session.ID()); err != nil {
				emit(errorMessage(err.Error()))
			}
		case "end":
			break readLoop
		default:
			emit(errorMessage("unsupported message type"))
		}
	}

	log.Info().Msg("quiz session closed")
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
