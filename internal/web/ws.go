package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// handleWebSocket re-runs the prediction for every PredictRequest the client
// sends and replies with a Result or an ErrorResponse.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	if s.metrics != nil {
		s.metrics.WSClients().Inc()
	}

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		if s.metrics != nil {
			s.metrics.WSClients().Dec()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("WebSocket client disconnected")
			}
			return
		}

		var reply interface{}
		var req PredictRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply = ErrorResponse{Error: err.Error()}
		} else if res, err := s.predict(r.Context(), req); err != nil {
			reply = ErrorResponse{Error: err.Error()}
		} else {
			reply = res
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Error().Err(err).Msg("Failed to send message to WebSocket client")
			return
		}
	}
}
