package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingPublisher{}
	b := &recordingPublisher{err: boom}
	c := &recordingPublisher{}

	err := Multi{a, nil, b, c}.Publish(context.Background(), Event{Type: TypeSubmissionUploaded, TeamID: "T1"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)

	assert.NoError(t, Multi{a}.Publish(context.Background(), Event{}))
}

func TestRooms(t *testing.T) {
	assert.Equal(t, "team_T1", RoomFor(Event{TeamID: "T1"}))
	assert.Equal(t, LeaderboardRoom, RoomFor(Event{}))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "team.TEAM001.submission_reviewed", RoutingKey(Event{Type: TypeSubmissionReviewed, TeamID: "TEAM001"}))
	assert.Equal(t, "team.a_b.mentor_assigned", RoutingKey(Event{Type: TypeMentorAssigned, TeamID: "a.b"}))
	assert.Equal(t, "leaderboard.leaderboard_updated", RoutingKey(Event{Type: TypeLeaderboardUpdated}))
}

type fakeChannel struct {
	declared  string
	published []amqp.Publishing
	keys      []string
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = name + ":" + kind
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitMQPublisher(ch, "hackathon.events", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "hackathon.events:topic", ch.declared)

	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.Publish(context.Background(), Event{
		Type: TypeSubmissionUploaded, TeamID: "T1", Payload: map[string]int{"files": 2}, Timestamp: ts,
	}))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "hackathon.events/team.T1.submission_uploaded", ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var decoded Event
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, "T1", decoded.TeamID)
	assert.True(t, ts.Equal(decoded.Timestamp))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestHub_DeliversToTeamRoomOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, TeamRoom(r.URL.Query().Get("team")))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	mine, _, err := websocket.DefaultDialer.Dial(wsURL+"?team=T1", nil)
	require.NoError(t, err)
	defer mine.Close()
	other, _, err := websocket.DefaultDialer.Dial(wsURL+"?team=T2", nil)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool {
		return hub.ClientsInRoom("team_T1") == 1 && hub.ClientsInRoom("team_T2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), Event{Type: TypeNotificationsUpdated, TeamID: "T1", Payload: "hello"}))

	_ = mine.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WebSocketMessage
	require.NoError(t, mine.ReadJSON(&msg))
	assert.Equal(t, TypeNotificationsUpdated, msg.Type)
	assert.Equal(t, "team_T1", msg.RoomID)
	assert.Equal(t, "hello", msg.Payload)

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "other team must not receive the event")
}
