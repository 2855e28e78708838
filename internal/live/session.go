package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"storeplan/internal/domain"
	"storeplan/internal/engine"
	"storeplan/internal/viewport"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Session is one connected viewer and its engine
type Session struct {
	ID     string
	conn   *websocket.Conn
	server *Server
	engine *engine.Engine

	send  chan []byte
	dirty chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newSession(id string, conn *websocket.Conn, server *Server) *Session {
	s := &Session{
		ID:     id,
		conn:   conn,
		server: server,
		send:   make(chan []byte, 64),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	cb := server.writer.EngineCallbacks(id)
	cb.OnViewportChanged = func(viewport.State) {
		s.invalidate()
	}
	cb.OnHover = func(e *domain.Entity, p domain.Point) {
		s.queue(ServerMessage{Type: MsgHover, Entity: e, Point: &p})
	}
	cb.OnSelect = func(e *domain.Entity) {
		s.queue(ServerMessage{Type: MsgSelect, Entity: e})
	}
	s.engine = engine.New(server.opts, cb)
	return s
}

// run serves the connection until the peer goes away or ctx ends
func (s *Session) run(ctx context.Context) {
	defer s.close()
	defer s.engine.Close()

	go s.writer()

	s.queue(ServerMessage{Type: MsgHello, Session: s.ID})
	if err := s.reload(ctx); err != nil {
		s.queue(ServerMessage{Type: MsgError, Error: err.Error()})
	}

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Live: session %s closed unexpectedly: %v", s.ID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.queue(ServerMessage{Type: MsgError, Error: fmt.Sprintf("invalid message: %v", err)})
			continue
		}
		if err := s.handle(msg); err != nil {
			s.queue(ServerMessage{Type: MsgError, Error: err.Error()})
			continue
		}
		s.invalidate()
	}
}

// handle applies one client message to the engine
func (s *Session) handle(msg ClientMessage) error {
	switch msg.Type {
	case MsgPointer:
		if msg.Pointer == nil {
			return fmt.Errorf("pointer message without pointer")
		}
		s.engine.HandlePointer(*msg.Pointer)
	case MsgWheel:
		if msg.Wheel == nil {
			return fmt.Errorf("wheel message without wheel")
		}
		s.engine.HandleWheel(*msg.Wheel)
	case MsgKey:
		if msg.Key == nil {
			return fmt.Errorf("key message without key")
		}
		if s.engine.HandleKey(*msg.Key) {
			s.queue(ServerMessage{Type: MsgKey, Handled: true})
		}
	case MsgResize:
		s.engine.SetScreenSize(domain.Size{Width: msg.Width, Height: msg.Height})
	case MsgMode:
		if msg.Edit != nil {
			if *msg.Edit && !s.server.editable.Load() {
				return fmt.Errorf("editing is disabled on this server")
			}
			s.engine.SetEditMode(*msg.Edit)
		}
		if msg.Select != nil {
			s.engine.SetSelectMode(*msg.Select)
		}
		if msg.Create != nil {
			kind := domain.EntityKind("")
			if *msg.Create != "" {
				kind = domain.ParseEntityKind(*msg.Create)
			}
			s.engine.SetCreateKind(kind)
		}
	case MsgRecenter:
		s.engine.Recenter()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// reload refreshes the engine from the stored layout and sends it to the viewer
func (s *Session) reload(ctx context.Context) error {
	layout, err := s.server.svc.GetLayout(ctx)
	if err != nil {
		return err
	}
	s.engine.SetEntities(layout.Entities)
	s.engine.SetGraphicElements(layout.Elements)
	s.engine.SetFramedView(layout.FramedView)

	s.queue(ServerMessage{Type: MsgLayout, Layout: layout})
	s.invalidate()
	return nil
}

// invalidate schedules a frame. It never blocks and is safe inside engine callbacks.
func (s *Session) invalidate() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Session) queue(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Live: failed to marshal %s message: %v", msg.Type, err)
		return
	}
	select {
	case s.send <- data:
	case <-s.done:
	default:
		log.Printf("Live: session %s is slow, dropping %s message", s.ID, msg.Type)
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// writer owns all writes to the connection
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.close()

	for {
		select {
		case data := <-s.send:
			if err := s.write(websocket.TextMessage, data); err != nil {
				return
			}

		case <-s.dirty:
			// Drain queued messages first so frames follow the events that caused them
			if !s.drain() {
				return
			}
			frame := s.engine.RenderModel()
			view := frame.View
			data, err := json.Marshal(ServerMessage{Type: MsgFrame, Frame: frame, Viewport: &view})
			if err != nil {
				log.Printf("Live: failed to marshal frame: %v", err)
				continue
			}
			if err := s.write(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Session) drain() bool {
	for {
		select {
		case data := <-s.send:
			if err := s.write(websocket.TextMessage, data); err != nil {
				return false
			}
		default:
			return true
		}
	}
}

func (s *Session) write(messageType int, data []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		log.Printf("Live: session %s write failed: %v", s.ID, err)
		return err
	}
	return nil
}
