package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"liarsdice-client/internal/dice"
)

// Transport is one live connection. Send only enqueues; a send after Close
// is dropped and reported as ErrTransportClosed.
type Transport interface {
	Send(msg ClientMessage) error
	Close() error
}

// DialRequest binds a new transport to a room key and a session epoch.
type DialRequest struct {
	RoomKey string
	Epoch   uint64
}

// Dialer opens transports. ctx bounds the transport's whole lifetime, not
// just the handshake. The returned transport pushes every decoded event,
// tagged with req.Epoch, into sink. A transport that dies on its own pushes
// one final Disconnected; one closed locally pushes nothing more.
type Dialer interface {
	Dial(ctx context.Context, req DialRequest, sink chan<- Envelope) (Transport, error)
}

var (
	ErrTransportClosed = errors.New("TRANSPORT_CLOSED: Connection already closed")
	ErrSendBufferFull  = errors.New("SEND_BUFFER_FULL: Too many pending messages")
)

const writeTimeout = 3 * time.Second

// WebsocketDialer dials the game server over a websocket. The room key is
// passed as the room query parameter.
type WebsocketDialer struct {
	URL        string
	LocalSlot  dice.Slot
	HTTPClient *http.Client
}

func (d *WebsocketDialer) Dial(ctx context.Context, req DialRequest, sink chan<- Envelope) (Transport, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("room", req.RoomKey)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPClient: d.HTTPClient})
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithCancel(ctx)
	t := &wsTransport{
		id:        uuid.New().String(),
		epoch:     req.Epoch,
		conn:      conn,
		localSlot: d.LocalSlot,
		sink:      sink,
		outbox:    make(chan ClientMessage, 16),
		ctx:       tctx,
		cancel:    cancel,
	}
	log.Info().Str("conn", t.id).Uint64("epoch", t.epoch).Str("room", req.RoomKey).Msg("connection opened")

	go t.writeLoop()
	go t.readLoop()
	return t, nil
}

type wsTransport struct {
	id        string
	epoch     uint64
	conn      *websocket.Conn
	localSlot dice.Slot
	sink      chan<- Envelope
	outbox    chan ClientMessage
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (t *wsTransport) Send(msg ClientMessage) error {
	select {
	case <-t.ctx.Done():
		return ErrTransportClosed
	default:
	}

	select {
	case t.outbox <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		err = t.conn.Close(websocket.StatusNormalClosure, "bye")
		log.Info().Str("conn", t.id).Uint64("epoch", t.epoch).Msg("connection closed")
	})
	return err
}

func (t *wsTransport) push(ev Event) bool {
	select {
	case t.sink <- Envelope{Epoch: t.epoch, Event: ev}:
		return true
	case <-t.ctx.Done():
		return false
	}
}

func (t *wsTransport) writeLoop() {
	for {
		select {
		case <-t.ctx.Done():
			return
		case msg := <-t.outbox:
			ctx, cancel := context.WithTimeout(t.ctx, writeTimeout)
			err := wsjson.Write(ctx, t.conn, msg)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("conn", t.id).Str("type", msg.Type).Msg("write failed")
			}
		}
	}
}

func (t *wsTransport) readLoop() {
	for {
		msgType, data, err := t.conn.Read(t.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				err = nil
			}
			if t.ctx.Err() != nil {
				// closed locally, nobody is listening for this epoch anymore
				return
			}
			log.Info().Err(err).Str("conn", t.id).Uint64("epoch", t.epoch).Msg("connection lost")
			t.push(Disconnected{Err: err})
			t.Close()
			return
		}

		if msgType != websocket.MessageText {
			log.Warn().Str("conn", t.id).Msg("non-text frame ignored")
			continue
		}

		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("conn", t.id).Msg("invalid JSON frame ignored")
			continue
		}

		ev, err := decodeEvent(msg, t.localSlot)
		if err != nil {
			log.Warn().Err(err).Str("conn", t.id).Str("type", msg.Type).Msg("server message ignored")
			continue
		}

		log.Debug().Str("conn", t.id).Uint64("epoch", t.epoch).Str("type", msg.Type).Msg("message received")
		if !t.push(ev) {
			return
		}
		if _, ok := ev.(Disconnected); ok {
			t.Close()
			return
		}
	}
}
