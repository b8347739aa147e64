package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liarsdice-client/internal/dice"
)

type fakeTransport struct {
	mu         sync.Mutex
	sent       []ClientMessage
	closed     bool
	closeDelay time.Duration
}

func (f *fakeTransport) Send(msg ClientMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrTransportClosed
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Close() error {
	time.Sleep(f.closeDelay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Sent() []ClientMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ClientMessage(nil), f.sent...)
}

func (f *fakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type dialCall struct {
	req       DialRequest
	sink      chan<- Envelope
	transport *fakeTransport
}

func (d dialCall) push(ev Event) {
	d.sink <- Envelope{Epoch: d.req.Epoch, Event: ev}
}

type fakeDialer struct {
	calls      chan dialCall
	err        error
	closeDelay time.Duration
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{calls: make(chan dialCall, 8)}
}

func (d *fakeDialer) Dial(ctx context.Context, req DialRequest, sink chan<- Envelope) (Transport, error) {
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{closeDelay: d.closeDelay}
	d.calls <- dialCall{req: req, sink: sink, transport: t}
	return t, nil
}

func (d *fakeDialer) next(t *testing.T) dialCall {
	t.Helper()
	select {
	case c := <-d.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no dial within timeout")
		return dialCall{}
	}
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []MatchReport
}

func (f *fakeReporter) Report(_ context.Context, r MatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReporter) Reports() []MatchReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MatchReport(nil), f.reports...)
}

func setupController(t *testing.T, opts Options) (*Controller, *fakeDialer) {
	t.Helper()
	d := newFakeDialer()
	opts.Dialer = d
	if opts.Profile.UserName == "" {
		opts.Profile = testProfile()
	}
	c := NewController(context.Background(), opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		c.Close(ctx)
	})
	return c, d
}

func waitView(t *testing.T, c *Controller, cond func(View) bool) View {
	t.Helper()
	var last View
	require.Eventually(t, func() bool {
		v, err := c.View()
		if err != nil {
			return false
		}
		last = v
		return cond(v)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

// startConnected starts a session and completes the connect handshake.
func startConnected(t *testing.T, c *Controller, d *fakeDialer) dialCall {
	t.Helper()
	require.NoError(t, c.Start("easy"))
	call := d.next(t)
	call.push(Connected{ParticipantID: "sid-local-0001"})
	waitView(t, c, func(v View) bool { return v.Status == StatusConnected })
	require.Eventually(t, func() bool { return len(call.transport.Sent()) > 0 }, 2*time.Second, 5*time.Millisecond, "handshake not sent")
	return call
}

func TestControllerStartHandshakes(t *testing.T) {
	c, d := setupController(t, Options{})

	call := startConnected(t, c, d)
	assert.Equal(t, uint64(1), call.req.Epoch)
	assert.Equal(t, "easy", call.req.RoomKey)

	sent := call.transport.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "player_names", msg.Type)
	assert.Equal(t, PlayerNamesRequest{UserName: "Alice", AIName: "Easy Bot"}, msg.Payload)

	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, "sid-local-0001", v.LocalID)
	assert.Equal(t, "Alice", v.Name("sid-local-0001"))
}

func TestControllerStartRejectsBadInput(t *testing.T) {
	c, _ := setupController(t, Options{})
	assert.True(t, errors.Is(c.Start("expert"), ErrInvalidRoomKey))

	bad, _ := setupController(t, Options{Profile: Profile{UserName: "   "}})
	assert.Error(t, bad.Start("easy"))
}

func TestControllerSubmit(t *testing.T) {
	c, d := setupController(t, Options{})
	call := startConnected(t, c, d)

	call.push(GameUpdated{State: stateOf(1, bidOf(3, dice.Two), map[dice.Slot]int{1: 5, 2: 5})})
	waitView(t, c, func(v View) bool { return v.State != nil })

	require.NoError(t, c.Submit(PlaceBid(3, dice.Four)))
	sent := call.transport.Sent()
	assert.Equal(t, ClientMessage{Type: "chat", Payload: "bid 3 4"}, sent[len(sent)-1])

	err := c.Submit(PlaceBid(2, dice.Six))
	assert.True(t, errors.Is(err, ErrIllegalBid))
	assert.Len(t, call.transport.Sent(), len(sent), "rejected actions are not transmitted")

	v, _ := c.View()
	assert.Contains(t, v.LastError, "ILLEGAL_BID")

	require.NoError(t, c.Submit(CallLiar()))
	sent = call.transport.Sent()
	assert.Equal(t, "challenge", sent[len(sent)-1].Payload)
}

func TestControllerSubmitBeforeConnect(t *testing.T) {
	c, _ := setupController(t, Options{})
	assert.True(t, errors.Is(c.Submit(CallLiar()), ErrNotConnected))
}

func TestControllerChatThrottled(t *testing.T) {
	now := time.Unix(5000, 0)
	c, d := setupController(t, Options{Clock: func() time.Time { return now }})
	startConnected(t, c, d)

	for i := range 5 {
		assert.NoError(t, c.Chat("hello"), "message %d", i)
	}
	assert.True(t, errors.Is(c.Chat("hello"), ErrChatThrottled))
}

func TestControllerChatMovesAreGated(t *testing.T) {
	c, d := setupController(t, Options{})
	call := startConnected(t, c, d)

	call.push(GameUpdated{State: stateOf(2, bidOf(3, dice.Four), map[dice.Slot]int{1: 5, 2: 5})})
	waitView(t, c, func(v View) bool { return v.State != nil })
	before := len(call.transport.Sent())

	assert.True(t, errors.Is(c.Chat("bid 1 2"), ErrNotYourTurn))
	assert.True(t, errors.Is(c.Chat("challenge"), ErrNotYourTurn))
	assert.True(t, errors.Is(c.Chat("bidding is fun"), ErrInvalidInput))
	assert.Len(t, call.transport.Sent(), before, "gated moves are not transmitted")

	v, _ := c.View()
	assert.Contains(t, v.LastError, "INVALID_INPUT")

	call.push(GameUpdated{State: stateOf(1, bidOf(3, dice.Four), map[dice.Slot]int{1: 5, 2: 5})})
	waitView(t, c, func(v View) bool { return v.MyTurn })

	assert.True(t, errors.Is(c.Chat("bid 2 6"), ErrIllegalBid))
	require.NoError(t, c.Chat("bid 3 5"))
	sent := call.transport.Sent()
	assert.Equal(t, ClientMessage{Type: "chat", Payload: "bid 3 5"}, sent[len(sent)-1])

	// not a move to the server: plain chat, never gated by turn
	require.NoError(t, c.Chat("I challenge you"))
}

func TestControllerChatClosedAfterGameOver(t *testing.T) {
	c, d := setupController(t, Options{})
	call := startConnected(t, c, d)

	call.push(GameUpdated{State: stateOf(1, bidOf(3, dice.Four), map[dice.Slot]int{1: 0, 2: 2})})
	waitView(t, c, func(v View) bool { return v.Terminal })
	before := len(call.transport.Sent())

	assert.True(t, errors.Is(c.Chat("bid 9 6"), ErrGameOver))
	assert.True(t, errors.Is(c.Chat("gg"), ErrGameOver))
	assert.Len(t, call.transport.Sent(), before)
}

func TestControllerSendFailureIsShown(t *testing.T) {
	c, d := setupController(t, Options{})
	call := startConnected(t, c, d)

	call.push(GameUpdated{State: stateOf(1, nil, map[dice.Slot]int{1: 5, 2: 5})})
	waitView(t, c, func(v View) bool { return v.State != nil })

	// the transport died but its disconnect has not arrived yet
	call.transport.Close()

	assert.True(t, errors.Is(c.Submit(PlaceBid(1, dice.Two)), ErrTransportClosed))
	v, _ := c.View()
	assert.Contains(t, v.LastError, "TRANSPORT_CLOSED")

	assert.True(t, errors.Is(c.Chat("hello"), ErrTransportClosed))
}

func TestControllerCloseWaitsForTransport(t *testing.T) {
	c, d := setupController(t, Options{})
	d.closeDelay = 20 * time.Millisecond
	call := startConnected(t, c, d)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))

	assert.True(t, call.transport.Closed(), "transport must be closed when Close returns")
}

func TestControllerCloseWaitsForSupersededTransport(t *testing.T) {
	c, d := setupController(t, Options{TeardownDelay: time.Hour})
	d.closeDelay = 20 * time.Millisecond
	call := startConnected(t, c, d)

	require.NoError(t, c.PlayAgain(""))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))

	assert.True(t, call.transport.Closed())
}

func TestControllerDropsStaleEpoch(t *testing.T) {
	c, d := setupController(t, Options{})
	old := startConnected(t, c, d)

	require.NoError(t, c.PlayAgain(""))
	fresh := d.next(t)
	assert.Equal(t, uint64(2), fresh.req.Epoch)
	assert.Equal(t, "easy", fresh.req.RoomKey)
	require.Eventually(t, old.transport.Closed, time.Second, 5*time.Millisecond)

	old.push(GameUpdated{State: stateOf(1, nil, map[dice.Slot]int{1: 5, 2: 5})})
	old.push(ChatReceived{ParticipantID: "ghost", Text: "boo"})
	fresh.push(Connected{ParticipantID: "sid-new"})

	v := waitView(t, c, func(v View) bool { return v.Status == StatusConnected })
	assert.Equal(t, uint64(2), v.Epoch)
	assert.Nil(t, v.State)
	assert.Empty(t, v.Messages)
	assert.Equal(t, "sid-new", v.LocalID)
}

func TestControllerPlayAgainIgnoresSupersededTimer(t *testing.T) {
	c, d := setupController(t, Options{TeardownDelay: 50 * time.Millisecond})
	startConnected(t, c, d)

	require.NoError(t, c.PlayAgain("hard"))
	require.NoError(t, c.PlayAgain("medium"))

	call := d.next(t)
	assert.Equal(t, uint64(3), call.req.Epoch)
	assert.Equal(t, "medium", call.req.RoomKey)

	select {
	case extra := <-d.calls:
		t.Fatalf("unexpected dial for epoch %d", extra.req.Epoch)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestControllerDialFailure(t *testing.T) {
	c, d := setupController(t, Options{})
	d.err = errors.New("connection refused")

	require.NoError(t, c.Start("easy"))
	v := waitView(t, c, func(v View) bool { return v.LastError != "" })
	assert.Equal(t, StatusDisconnected, v.Status)
	assert.Contains(t, v.LastError, "connection refused")
}

func TestControllerReportsOnce(t *testing.T) {
	rep := &fakeReporter{}
	c, d := setupController(t, Options{Reporter: rep})
	call := startConnected(t, c, d)

	final := stateOf(2, nil, map[dice.Slot]int{1: 3, 2: 0})
	final.ScoresBySlot = map[dice.Slot]int{1: 500, 2: -100}
	call.push(GameUpdated{State: final})
	call.push(GameUpdated{State: final})
	call.push(GameOver{Winner: "Alice"})

	v := waitView(t, c, func(v View) bool { return v.Terminal })
	assert.Equal(t, "Alice", v.Winner)
	assert.True(t, errors.Is(c.Submit(CallLiar()), ErrGameOver))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Close(ctx))

	reports := rep.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 500, reports[0].UserScore)
	assert.Equal(t, "Alice", reports[0].Winner)
	assert.Equal(t, "sid-local-0001", reports[0].RoomSocketID)
	assert.NotEmpty(t, reports[0].ReportID)
}

func TestControllerLastActivity(t *testing.T) {
	now := time.Unix(7000, 0)
	c, d := setupController(t, Options{Clock: func() time.Time { return now }})
	startConnected(t, c, d)

	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, now, v.LastActivity)
}

func TestControllerUpdatesCoalesce(t *testing.T) {
	c, d := setupController(t, Options{})
	call := startConnected(t, c, d)

	for i := range 10 {
		call.push(ChatReceived{ParticipantID: "ai_1", Text: string(rune('a' + i))})
	}
	waitView(t, c, func(v View) bool { return len(v.Messages) == 10 })

	select {
	case v := <-c.Updates():
		assert.Len(t, v.Messages, 10)
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
}

func TestControllerClosed(t *testing.T) {
	c, _ := setupController(t, Options{})
	require.NoError(t, c.Close(context.Background()))

	assert.True(t, errors.Is(c.Start("easy"), ErrControllerClosed))
	_, err := c.View()
	assert.True(t, errors.Is(err, ErrControllerClosed))
}
