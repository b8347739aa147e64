package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Controller owns the transport and the current Session. A single
// dispatcher goroutine applies transport events and user requests in
// arrival order, so session state needs no locking. Events from a
// transport whose epoch is not the current one are dropped.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	inbox   chan ctrlMsg
	events  chan Envelope
	updates chan View
	done    chan struct{}

	dialer        Dialer
	reporter      Reporter
	profile       Profile
	teardownDelay time.Duration
	reportTimeout time.Duration
	now           func() time.Time

	// dispatcher-owned
	session   Session
	transport Transport
	chat      *RateLimiter

	reports sync.WaitGroup
	closing sync.WaitGroup
}

type Options struct {
	Dialer        Dialer
	Reporter      Reporter
	Profile       Profile
	TeardownDelay time.Duration
	ReportTimeout time.Duration
	Clock         func() time.Time
}

var ErrControllerClosed = errors.New("CONTROLLER_CLOSED: Client is shutting down")

type ctrlMsg interface{ isCtrlMsg() }

type startReq struct {
	roomKey string
	reply   chan error
}

type submitReq struct {
	action Action
	reply  chan error
}

type chatReq struct {
	text  string
	reply chan error
}

type playAgainReq struct {
	roomKey string
	reply   chan error
}

type viewReq struct {
	reply chan View
}

type dialed struct {
	epoch     uint64
	transport Transport
	err       error
}

type teardownElapsed struct {
	epoch uint64
}

func (startReq) isCtrlMsg()        {}
func (submitReq) isCtrlMsg()       {}
func (chatReq) isCtrlMsg()         {}
func (playAgainReq) isCtrlMsg()    {}
func (viewReq) isCtrlMsg()         {}
func (dialed) isCtrlMsg()          {}
func (teardownElapsed) isCtrlMsg() {}

func NewController(parent context.Context, opts Options) *Controller {
	ctx, cancel := context.WithCancel(parent)

	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = 5 * time.Second
	}
	if opts.Profile.LocalSlot == 0 {
		opts.Profile.LocalSlot = 1
	}

	c := &Controller{
		ctx:           ctx,
		cancel:        cancel,
		inbox:         make(chan ctrlMsg, 16),
		events:        make(chan Envelope, 64),
		updates:       make(chan View, 1),
		done:          make(chan struct{}),
		dialer:        opts.Dialer,
		reporter:      opts.Reporter,
		profile:       opts.Profile,
		teardownDelay: opts.TeardownDelay,
		reportTimeout: opts.ReportTimeout,
		now:           opts.Clock,
		session:       NewSession(0, "", opts.Profile),
		chat:          NewRateLimiter(5, time.Second),
	}

	go c.loop()
	return c
}

/*
 * Public API: every call is a request into the dispatcher.
 */

// Start opens a session for roomKey. It returns once dialing has begun;
// connection progress is reported through Updates.
func (c *Controller) Start(roomKey string) error {
	reply := make(chan error, 1)
	return c.request(startReq{roomKey: roomKey, reply: reply}, reply)
}

// Submit validates a against the current session and transmits it if legal.
func (c *Controller) Submit(a Action) error {
	reply := make(chan error, 1)
	return c.request(submitReq{action: a, reply: reply}, reply)
}

// Chat sends free-form text. "bid ..." and "challenge" are moves to the
// server, so they are gated exactly like Submit.
func (c *Controller) Chat(text string) error {
	reply := make(chan error, 1)
	return c.request(chatReq{text: text, reply: reply}, reply)
}

// PlayAgain tears down the current transport and, after the teardown delay,
// opens a fresh session. An empty roomKey reuses the current one.
func (c *Controller) PlayAgain(roomKey string) error {
	reply := make(chan error, 1)
	return c.request(playAgainReq{roomKey: roomKey, reply: reply}, reply)
}

// View returns a snapshot of the current session for rendering.
func (c *Controller) View() (View, error) {
	reply := make(chan View, 1)
	select {
	case c.inbox <- viewReq{reply: reply}:
	case <-c.done:
		return View{}, ErrControllerClosed
	}
	select {
	case v := <-reply:
		return v, nil
	case <-c.done:
		return View{}, ErrControllerClosed
	}
}

// Updates delivers the latest view after every change. Views are
// coalesced: a slow reader only ever sees the most recent one.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// Close stops the dispatcher and closes the transport with a normal
// closure. It then waits, until ctx expires, for transports still closing
// and for pending match reports.
func (c *Controller) Close(ctx context.Context) error {
	c.cancel()
	<-c.done

	waited := make(chan struct{})
	go func() {
		c.closing.Wait()
		c.reports.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) request(m ctrlMsg, reply chan error) error {
	select {
	case c.inbox <- m:
	case <-c.done:
		return ErrControllerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-c.done:
		return ErrControllerClosed
	}
}

/*
 * Dispatcher
 */

func (c *Controller) loop() {
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			if c.transport != nil {
				if err := c.transport.Close(); err != nil {
					log.Debug().Err(err).Msg("transport close")
				}
				c.transport = nil
			}
			log.Info().Msg("controller stopped")
			return

		case env := <-c.events:
			c.handleEnvelope(env)

		case m := <-c.inbox:
			switch msg := m.(type) {
			case startReq:
				msg.reply <- c.handleStart(msg.roomKey)

			case submitReq:
				msg.reply <- c.handleSubmit(msg.action)

			case chatReq:
				msg.reply <- c.handleChat(msg.text)

			case playAgainReq:
				msg.reply <- c.handlePlayAgain(msg.roomKey)

			case viewReq:
				msg.reply <- c.view()

			case dialed:
				c.handleDialed(msg)

			case teardownElapsed:
				if msg.epoch == c.session.Epoch && c.session.Status == StatusDisconnected {
					c.beginDial()
				}
			}
		}
	}
}

func (c *Controller) handleStart(roomKey string) error {
	if err := ValidateRoomKey(roomKey); err != nil {
		return err
	}
	if err := ValidateUsername(c.profile.UserName); err != nil {
		return err
	}
	if c.transport != nil || c.session.Status == StatusConnecting {
		return errors.New("ALREADY_STARTED: A session is already active, use play again")
	}

	c.session = NewSession(c.session.Epoch+1, roomKey, c.profile)
	c.beginDial()
	return nil
}

func (c *Controller) handlePlayAgain(roomKey string) error {
	if roomKey == "" {
		roomKey = c.session.RoomKey
	}
	if err := ValidateRoomKey(roomKey); err != nil {
		return err
	}

	c.teardown()
	c.session = NewSession(c.session.Epoch+1, roomKey, c.profile)
	c.chat.Reset()
	c.publish()

	epoch := c.session.Epoch
	log.Info().Uint64("epoch", epoch).Str("room", c.session.RoomKey).Dur("delay", c.teardownDelay).Msg("play again scheduled")
	time.AfterFunc(c.teardownDelay, func() {
		select {
		case c.inbox <- teardownElapsed{epoch: epoch}:
		case <-c.ctx.Done():
		}
	})
	return nil
}

// beginDial moves the current session to Connecting and dials off the
// dispatcher goroutine.
func (c *Controller) beginDial() {
	c.session = c.session.Connecting()
	c.publish()

	req := DialRequest{RoomKey: c.session.RoomKey, Epoch: c.session.Epoch}
	log.Info().Uint64("epoch", req.Epoch).Str("room", req.RoomKey).Msg("dialing")

	c.closing.Add(1)
	go func() {
		defer c.closing.Done()
		t, err := c.dialer.Dial(c.ctx, req, c.events)
		select {
		case c.inbox <- dialed{epoch: req.Epoch, transport: t, err: err}:
		case <-c.ctx.Done():
			if t != nil {
				t.Close()
			}
		}
	}()
}

func (c *Controller) handleDialed(msg dialed) {
	if msg.epoch != c.session.Epoch {
		if msg.transport != nil {
			log.Debug().Uint64("epoch", msg.epoch).Msg("closing superseded transport")
			c.closeAsync(msg.transport)
		}
		return
	}

	if msg.err != nil {
		log.Warn().Err(msg.err).Uint64("epoch", msg.epoch).Msg("connect failed")
		c.apply(Disconnected{Err: msg.err})
		return
	}

	// the transport may have reported its own end before Dial returned here
	if c.session.Status != StatusConnecting && !c.session.TransportUp {
		c.closeAsync(msg.transport)
		return
	}

	c.transport = msg.transport
	if c.session.TransportUp {
		c.handshake()
	}
}

func (c *Controller) handleEnvelope(env Envelope) {
	if env.Epoch != c.session.Epoch {
		log.Debug().Uint64("epoch", env.Epoch).Uint64("current", c.session.Epoch).Msg("stale event dropped")
		return
	}

	c.session.LastActivity = c.now()
	c.apply(env.Event)

	switch env.Event.(type) {
	case Connected:
		c.handshake()
	case Disconnected:
		c.transport = nil
	}
}

func (c *Controller) apply(ev Event) {
	var res *MatchResult
	c.session, res = Step(c.session, ev)
	if res != nil {
		log.Info().Str("winner", res.Winner).Uint64("epoch", c.session.Epoch).Msg("game over")
		c.report(*res)
	}
	c.publish()
}

func (c *Controller) handshake() {
	if c.transport == nil {
		return
	}
	msg := ClientMessage{
		Type: "player_names",
		Payload: PlayerNamesRequest{
			UserName: c.profile.UserName,
			AIName:   AIName(c.session.RoomKey),
		},
	}
	if err := c.transport.Send(msg); err != nil {
		log.Warn().Err(err).Msg("failed to send player_names")
	}
}

func (c *Controller) handleSubmit(a Action) error {
	if err := CheckAction(c.session, a); err != nil {
		return c.fail(err)
	}

	if err := c.send(a.Command()); err != nil {
		return c.fail(err)
	}
	c.session.LastError = nil
	c.publish()
	return nil
}

// handleChat sends free-form text. Text the server would read as a move
// goes through the action gate like Submit.
func (c *Controller) handleChat(text string) error {
	if a, isMove, err := chatCommand(text); isMove {
		if err != nil {
			return c.fail(err)
		}
		return c.handleSubmit(a)
	}

	if err := CheckChat(c.session); err != nil {
		return err
	}
	if !c.chat.Allow(c.now()) {
		return ErrChatThrottled
	}
	if err := c.send(text); err != nil {
		return c.fail(err)
	}
	return nil
}

// fail records err on the session so the status display shows it.
func (c *Controller) fail(err error) error {
	c.session.LastError = err
	c.publish()
	return err
}

func (c *Controller) send(text string) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	return c.transport.Send(ClientMessage{Type: "chat", Payload: text})
}

// teardown drops the current transport and closes it off the dispatcher.
// Close waits for these closes.
func (c *Controller) teardown() {
	if c.transport != nil {
		c.closeAsync(c.transport)
		c.transport = nil
	}
}

// closeAsync must only be called from the dispatcher goroutine.
func (c *Controller) closeAsync(t Transport) {
	c.closing.Add(1)
	go func() {
		defer c.closing.Done()
		t.Close()
	}()
}

func (c *Controller) report(res MatchResult) {
	rep := c.session.Report(res, uuid.New().String())

	c.reports.Add(1)
	go func() {
		defer c.reports.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.reportTimeout)
		defer cancel()

		if err := c.reporter.Report(ctx, rep); err != nil {
			log.Warn().Err(err).Str("report", rep.ReportID).Msg("match report failed")
			return
		}
		log.Info().Str("report", rep.ReportID).Int("score", rep.UserScore).Msg("match reported")
	}()
}

func (c *Controller) publish() {
	v := c.view()
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- v:
	default:
	}
}
