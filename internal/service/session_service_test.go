package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/zap/zaptest"
)

func TestSessionServiceOpenGetRemove(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))

	session := s.Open()
	require.NotEmpty(t, session.ID)
	assert.Nil(t, session.Widget)
	assert.Equal(t, 1, s.Count())
	assert.Zero(t, s.GetOnlineCount())

	got, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	assert.True(t, s.Remove(session.ID))
	assert.False(t, s.Remove(session.ID))

	_, err = s.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	a, b := s.Open(), s.Open()

	_, err := a.Conversation.Submit(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, 3, a.Conversation.State().Len())
	assert.Equal(t, 1, b.Conversation.State().Len())
}

func TestRemoveInvalidatesConversation(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	session := s.Open()

	sub, err := session.Conversation.Accept("hello")
	require.NoError(t, err)
	s.Remove(session.ID)

	_, err = session.Conversation.Respond(context.Background(), sub)
	assert.ErrorIs(t, err, ErrStaleSubmission)
}

func TestPushWithoutConnection(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	session := s.Open()

	err := s.Push(session.ID, model.ServerFrame{Type: model.FrameAck})
	assert.ErrorIs(t, err, ErrNotConnected)

	err = s.Push("missing", model.ServerFrame{Type: model.FrameAck})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.False(t, s.UpdateHeartbeat(session.ID))
}

func TestRunHeartbeatCheckerStopsOnCancel(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.RunHeartbeatChecker(ctx))
}

func newServerConn(t *testing.T) *websocket.Conn {
	t.Helper()
	connc := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var up websocket.Upgrader
		if c, err := up.Upgrade(w, r, nil); err == nil {
			connc <- c
		}
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return <-connc
}

func TestOpenWidgetReplacesOldConnection(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))

	first := s.OpenWidget(1, newServerConn(t), "127.0.0.1")
	second := s.OpenWidget(1, newServerConn(t), "127.0.0.1")

	assert.Equal(t, 1, s.GetOnlineCount())
	_, err := s.Get(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Push(second.ID, model.ServerFrame{Type: model.FrameAck}))
	assert.True(t, s.UpdateHeartbeat(second.ID))
}

func TestStreamPushesStateInOrder(t *testing.T) {
	connc := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var up websocket.Upgrader
		if c, err := up.Upgrade(w, r, nil); err == nil {
			connc <- c
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	session := s.OpenWidget(3, <-connc, "127.0.0.1")
	defer s.Remove(session.ID)

	render := func(msg model.Message) model.ServerFrame {
		return model.ServerFrame{Type: model.FrameMessage, Message: &model.MessageView{ID: msg.ID, Text: msg.Text}}
	}
	require.NoError(t, s.Stream(session, render))

	_, err = session.Conversation.Submit(context.Background(), "hello")
	require.NoError(t, err)

	msgs := session.Conversation.State().Messages()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	for _, want := range msgs {
		var frame model.ServerFrame
		require.NoError(t, client.ReadJSON(&frame))
		require.NotNil(t, frame.Message)
		assert.Equal(t, want.ID, frame.Message.ID)
	}

	assert.ErrorIs(t, s.Stream(s.Open(), render), ErrNotConnected)
}

func TestSweepRemovesAfterThreeMissedBeats(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	widget := s.OpenWidget(2, newServerConn(t), "127.0.0.1")

	late := time.Now().Add(2 * heartbeatTimeout)
	s.sweep(late)
	s.sweep(late)
	_, err := s.Get(widget.ID)
	require.NoError(t, err)

	s.sweep(late)
	_, err = s.Get(widget.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, s.GetOnlineCount())
}

func TestSweepExpiresIdleRestSessions(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	s.SetIdleTTL(time.Minute)

	idle := make([]*ChatSession, 0, 100)
	for i := 0; i < 100; i++ {
		idle = append(idle, s.Open())
	}
	require.Equal(t, 100, s.Count())

	s.sweep(time.Now().Add(30 * 24 * time.Hour))
	assert.Zero(t, s.Count())

	sub, err := idle[0].Conversation.Accept("still there?")
	require.NoError(t, err)
	_, err = idle[0].Conversation.Respond(context.Background(), sub)
	assert.ErrorIs(t, err, ErrStaleSubmission)
}

func TestSweepKeepsRecentlyUsedRestSessions(t *testing.T) {
	s := NewSessionService(analyzerFunc(unavailable), zaptest.NewLogger(t))
	s.SetIdleTTL(time.Minute)

	active := s.Open()
	stale := s.Open()
	stale.touch(time.Now().Add(-2 * time.Minute))

	_, err := s.Get(active.ID)
	require.NoError(t, err)

	s.sweep(time.Now())

	_, err = s.Get(active.ID)
	assert.NoError(t, err)
	_, err = s.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
