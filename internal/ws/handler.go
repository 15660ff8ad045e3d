package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/lobby"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/types"
	pub "github.com/DoyleJ11/brawl-draft-tracker/pkg/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 8
)

// Handler upgrades an overlay connection and streams every published draft
// snapshot to it. Overlays don't send commands; the read loop only exists to
// notice the client going away.
func Handler(lb *lobby.Lobby, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan tracker.Snapshot, outboxSize)
		clientID := uuid.NewString()

		if !lb.Send(lobby.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}
		defer lb.Send(lobby.Leave{ClientID: clientID})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer writeCancel()
			for {
				var snap tracker.Snapshot
				select {
				case <-writeCtx.Done():
					return
				case s, ok := <-out:
					if !ok {
						// dropped as slow, or the lobby shut down
						conn.Close(websocket.StatusTryAgainLater, "lagging")
						return
					}
					snap = s
				}

				draftPayload := pub.NewDraft(snap)
				msg := types.ServerMessage{Type: types.MsgDraftSnapshot, Version: snap.Version, Draft: &draftPayload}
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("encoding snapshot", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					log.Debug("write to overlay failed", zap.String("client_id", clientID), zap.Error(err))
					return
				}
			}
		}()

		// Reader loop
		for {
			_, _, err := conn.Read(writeCtx)
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("overlay connection ended", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}
			// Nothing to do with inbound frames yet.
		}
	}
}
