package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/draft"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/lobby"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/types"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMessage(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_StreamsSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lb := lobby.NewLobby(ctx, tracker.Snapshot{State: draft.NewEmptyState(), Diff: draft.NewEmptyDiff()}, nil)
	srv := httptest.NewServer(Handler(lb, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readMessage(t, conn)
	assert.Equal(t, types.MsgDraftSnapshot, first.Type)
	require.NotNil(t, first.Draft)
	assert.Equal(t, draft.StatusUnknown, first.Draft.Status)

	s := draft.NewEmptyState()
	s.Status = draft.StatusInProgress
	s.TeamB.Bans = []string{"Mortis"}
	require.NoError(t, lb.Publish(ctx, tracker.Snapshot{Version: 1, State: s, Diff: draft.ComputeDiff(nil, s)}))

	next := readMessage(t, conn)
	assert.Equal(t, 1, next.Version)
	require.NotNil(t, next.Draft)
	assert.Equal(t, []string{"Mortis"}, next.Draft.TeamB.Bans)
	assert.Equal(t, []string{"Mortis"}, next.Draft.Diff.TeamB.NewBans)
}

func TestHandler_LobbyShutdownClosesConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lb := lobby.NewLobby(ctx, tracker.Snapshot{}, nil)
	srv := httptest.NewServer(Handler(lb, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_ = readMessage(t, conn)

	lb.Inbox() <- lobby.Shutdown{}

	readCtx, readCancel := context.WithTimeout(ctx, time.Second)
	defer readCancel()
	_, _, err = conn.Read(readCtx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusTryAgainLater, websocket.CloseStatus(err))
}
