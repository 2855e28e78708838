// Package live runs one gesture engine per websocket connection.
//
// Viewers send raw pointer, wheel and key input; the server answers with
// rendered frames. Mutations are persisted through the service Writer and
// pushed to every other connected session.
package live

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"storeplan/internal/engine"
	"storeplan/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server handles websocket connections for live sessions
type Server struct {
	upgrader websocket.Upgrader
	svc      *service.LayoutService
	writer   *service.Writer
	opts     engine.Options
	editable atomic.Bool

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates a live server. Every session's engine starts from opts.
func NewServer(svc *service.LayoutService, writer *service.Writer, opts engine.Options) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		svc:      svc,
		writer:   writer,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
	s.editable.Store(true)
	return s
}

// SetCheckOrigin replaces the websocket origin check
func (s *Server) SetCheckOrigin(fn func(r *http.Request) bool) {
	s.upgrader.CheckOrigin = fn
}

// SetEditable controls whether clients may switch their session into edit mode
func (s *Server) SetEditable(on bool) {
	s.editable.Store(on)
}

// ServeHTTP upgrades the connection and runs a session until it disconnects.
// The {session} path value names the session; "new" or empty picks a fresh ID.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if id == "" || id == "new" {
		id = uuid.New().String()
	}

	s.mu.RLock()
	_, taken := s.sessions[id]
	s.mu.RUnlock()
	if taken {
		http.Error(w, "Session already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Live: failed to upgrade connection: %v", err)
		return
	}

	session := newSession(id, conn, s)
	if !s.add(session) {
		conn.Close()
		return
	}
	defer s.remove(id)

	log.Printf("Live: session %s connected (total: %d)", id, s.SessionCount())
	session.run(r.Context())
	log.Printf("Live: session %s disconnected", id)
}

func (s *Server) add(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.sessions[session.ID]; taken {
		return false
	}
	s.sessions[session.ID] = session
	return true
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run pushes layout changes made elsewhere into every session until ctx is cancelled,
// then disconnects every session
func (s *Server) Run(ctx context.Context) {
	events := make(chan service.Event, 256)
	bus := s.svc.Events()
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case ev := <-events:
			if !changesLayout(ev.Type) {
				continue
			}
			s.mu.RLock()
			targets := make([]*Session, 0, len(s.sessions))
			for id, session := range s.sessions {
				if id != ev.Origin {
					targets = append(targets, session)
				}
			}
			s.mu.RUnlock()

			for _, session := range targets {
				if err := session.reload(ctx); err != nil {
					log.Printf("Live: failed to reload session %s: %v", session.ID, err)
				}
			}
		}
	}
}

func (s *Server) closeAll() {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	for _, session := range sessions {
		session.close()
	}
}

func changesLayout(t service.EventType) bool {
	switch t {
	case service.EventEntityCreated, service.EventEntityUpdated, service.EventEntityDeleted,
		service.EventElementUpdated, service.EventElementDeleted,
		service.EventFramedViewUpdated, service.EventLayoutReloaded:
		return true
	}
	return false
}
