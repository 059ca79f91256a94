package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportbot/moodbot-go/internal/client"
	"github.com/supportbot/moodbot-go/internal/model"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type analyzerFunc func(ctx context.Context, text string) (model.Sentiment, error)

func (f analyzerFunc) Analyze(ctx context.Context, text string) (model.Sentiment, error) {
	return f(ctx, text)
}

func unavailable(context.Context, string) (model.Sentiment, error) {
	return model.AnalysisUnavailable, client.ErrAnalysisUnavailable
}

func TestNewConversationStartsWithGreeting(t *testing.T) {
	c := NewConversation(analyzerFunc(unavailable), zaptest.NewLogger(t))

	msgs := c.State().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.AuthorBot, msgs[0].Author)
	assert.Equal(t, GreetingReply, msgs[0].Text)
	assert.Equal(t, model.WidgetMoodSelector, msgs[0].Widget)
	assert.NotEmpty(t, c.ID())
}

func TestAcceptAppendsUserMessageBeforeReply(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	c := NewConversation(analyzerFunc(func(ctx context.Context, _ string) (model.Sentiment, error) {
		<-release
		return model.AnalysisUnavailable, client.ErrAnalysisUnavailable
	}), zaptest.NewLogger(t))

	sub, err := c.Accept("  hello there  ")
	require.NoError(t, err)

	last, ok := c.State().Last()
	require.True(t, ok)
	assert.Equal(t, model.AuthorUser, last.Author)
	assert.Equal(t, "hello there", last.Text)
	assert.Equal(t, sub.Message.ID, last.ID)

	done := make(chan model.Message)
	go func() {
		reply, err := c.Respond(context.Background(), sub)
		assert.NoError(t, err)
		done <- reply
	}()

	close(release)
	reply := <-done

	msgs := c.State().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.AuthorUser, msgs[1].Author)
	assert.Equal(t, reply.ID, msgs[2].ID)
	assert.False(t, msgs[2].Timestamp.Before(msgs[1].Timestamp))
}

func TestSubscribeSeesMessagesInStateOrder(t *testing.T) {
	c := NewConversation(analyzerFunc(func(ctx context.Context, text string) (model.Sentiment, error) {
		return analyzed(model.SentimentNeutral, conf(0.5)), nil
	}), zaptest.NewLogger(t))

	_, err := c.Submit(context.Background(), "before subscribe")
	require.NoError(t, err)

	var seen []string
	c.Subscribe(func(msg model.Message) { seen = append(seen, msg.ID) })
	require.Len(t, seen, 3)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Submit(context.Background(), "hi")
		}()
	}
	wg.Wait()

	msgs := c.State().Messages()
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}
	assert.Equal(t, ids, seen)
	assert.Equal(t, GreetingReply, msgs[0].Text)
}

func TestCloseStopsListener(t *testing.T) {
	c := NewConversation(analyzerFunc(unavailable), zaptest.NewLogger(t))

	var count int
	c.Subscribe(func(model.Message) { count++ })
	c.Close()

	_, err := c.Accept("anyone?")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitRejectsBlankInputWithoutAnalysis(t *testing.T) {
	var calls int32
	c := NewConversation(analyzerFunc(func(ctx context.Context, text string) (model.Sentiment, error) {
		atomic.AddInt32(&calls, 1)
		return model.AnalysisUnavailable, nil
	}), zaptest.NewLogger(t))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.Submit(context.Background(), text)
		require.ErrorIs(t, err, model.ErrInvalidInput)
	}

	assert.Equal(t, 1, c.State().Len())
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestNewerSubmissionDropsStaleReply(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	started := make(chan struct{})
	c := NewConversation(analyzerFunc(func(ctx context.Context, text string) (model.Sentiment, error) {
		if text == "first" {
			close(started)
			<-ctx.Done()
			return model.AnalysisUnavailable, ctx.Err()
		}
		return analyzed(model.SentimentPositive, conf(0.9)), nil
	}), zaptest.NewLogger(t))

	first, err := c.Accept("first")
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Respond(context.Background(), first)
		errc <- err
	}()
	<-started

	reply, err := c.Submit(context.Background(), "I feel good")
	require.NoError(t, err)

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrStaleSubmission)
	case <-time.After(2 * time.Second):
		t.Fatal("stale analysis was not canceled")
	}

	msgs := c.State().Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "first", msgs[1].Text)
	assert.Equal(t, "I feel good", msgs[2].Text)
	assert.Equal(t, reply.ID, msgs[3].ID)
	assert.Contains(t, reply.Text, "90.0%")
}

func TestRespondAfterNewerAcceptIsStale(t *testing.T) {
	c := NewConversation(analyzerFunc(unavailable), zaptest.NewLogger(t))

	first, err := c.Accept("one")
	require.NoError(t, err)
	_, err = c.Accept("two")
	require.NoError(t, err)

	_, err = c.Respond(context.Background(), first)
	require.ErrorIs(t, err, ErrStaleSubmission)
	assert.Equal(t, 3, c.State().Len())
}

func TestCloseInvalidatesInFlight(t *testing.T) {
	c := NewConversation(analyzerFunc(unavailable), zaptest.NewLogger(t))

	sub, err := c.Accept("hello")
	require.NoError(t, err)
	c.Close()

	_, err = c.Respond(context.Background(), sub)
	require.ErrorIs(t, err, ErrStaleSubmission)
}

func TestStateSnapshotIsNotAffectedByLaterAppends(t *testing.T) {
	c := NewConversation(analyzerFunc(unavailable), zaptest.NewLogger(t))
	before := c.State()

	_, err := c.Submit(context.Background(), "happy")
	require.NoError(t, err)

	assert.Equal(t, 1, before.Len())
	assert.Equal(t, 3, c.State().Len())
}

// 端到端：真实 SentimentClient + httptest 服务

func newAnalyzeServer(t *testing.T, calls *int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEndSadWithUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger := zaptest.NewLogger(t)
	c := NewConversation(client.NewSentimentClient(url, time.Second, logger), logger)

	reply, err := c.Submit(context.Background(), "I feel sad today")
	require.NoError(t, err)
	assert.Equal(t, model.WidgetEmergencyOptions, reply.Widget)
	assert.NotContains(t, reply.Text, "%")
}

func TestEndToEndGoodDayPositive(t *testing.T) {
	var calls int32
	srv := newAnalyzeServer(t, &calls, `{"sentiment":"POSITIVE","confidence":0.87}`)

	logger := zaptest.NewLogger(t)
	c := NewConversation(client.NewSentimentClient(srv.URL, time.Second, logger), logger)

	reply, err := c.Submit(context.Background(), "I had a good day")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "87.0%")
	assert.NotEqual(t, model.WidgetEmergencyOptions, reply.Widget)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEndToEndEmptyInputNoNetworkCall(t *testing.T) {
	var calls int32
	srv := newAnalyzeServer(t, &calls, `{"sentiment":"POSITIVE","confidence":0.87}`)

	logger := zaptest.NewLogger(t)
	c := NewConversation(client.NewSentimentClient(srv.URL, time.Second, logger), logger)

	_, err := c.Submit(context.Background(), "")
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, 1, c.State().Len())
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestEndToEndNegativeOverridesNeutralWording(t *testing.T) {
	var calls int32
	srv := newAnalyzeServer(t, &calls, `{"sentiment":"NEGATIVE","confidence":0.42}`)

	logger := zaptest.NewLogger(t)
	c := NewConversation(client.NewSentimentClient(srv.URL, time.Second, logger), logger)

	reply, err := c.Submit(context.Background(), "it's an ordinary day")
	require.NoError(t, err)
	assert.Equal(t, model.WidgetEmergencyOptions, reply.Widget)
}
