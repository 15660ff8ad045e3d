package lobby

import (
	"context"
	"errors"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("lobby closed")

type Msg interface{ isLobbyMsg() }

type Join struct {
	ClientID string
	Outbox   chan tracker.Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Broadcast struct {
	Snap tracker.Snapshot
}

func (Broadcast) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	Version    int
	NumClients int
}

// Lobby fans published draft snapshots out to connected overlays. All state
// lives on the loop goroutine; everything else talks to it through the inbox.
type Lobby struct {
	inbox   chan Msg
	latest  tracker.Snapshot
	clients map[string]chan tracker.Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLobby(parent context.Context, initial tracker.Snapshot, log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		latest:  initial,
		clients: make(map[string]chan tracker.Snapshot),
		log:     log.Named("lobby"),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- l.latest:
				default:
					close(msg.Outbox)
					delete(l.clients, msg.ClientID)
				}
				l.log.Debug("overlay joined", zap.String("client_id", msg.ClientID), zap.Int("clients", len(l.clients)))

			case Leave:
				if _, ok := l.clients[msg.ClientID]; ok {
					delete(l.clients, msg.ClientID)
					l.log.Debug("overlay left", zap.String("client_id", msg.ClientID))
				}

			case Broadcast:
				// stale or duplicate generations are ignored
				if msg.Snap.Version <= l.latest.Version {
					break
				}
				l.latest = msg.Snap
				l.broadcast(msg.Snap)

			case GetState:
				msg.Reply <- View{
					Version:    l.latest.Version,
					NumClients: len(l.clients),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap tracker.Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			l.log.Info("dropping slow overlay client", zap.String("client_id", id))
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Publish hands a snapshot to the loop. It satisfies tracker.Publisher.
func (l *Lobby) Publish(ctx context.Context, snap tracker.Snapshot) error {
	if l.stopped() {
		return ErrClosed
	}
	select {
	case l.inbox <- Broadcast{Snap: snap}:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send delivers a message unless the lobby has already shut down.
func (l *Lobby) Send(msg Msg) bool {
	if l.stopped() {
		return false
	}
	select {
	case l.inbox <- msg:
		return true
	case <-l.done:
		return false
	}
}

func (l *Lobby) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Done() <-chan struct{} { return l.done }
