package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

const maxMessageSize = 64 << 10

type sessionKey struct{}

// Session is one connected page.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server
	env    *host.Env
	owner  *reactive.Owner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	writeMu   sync.Mutex
	closeOnce sync.Once

	// actions is only touched on the session loop.
	actions map[string]func()
}

func newSession(conn *websocket.Conn, s *Server) *Session {
	id := uuid.NewString()
	logger := s.logger.With("session", id)

	env := host.NewEnv()
	env.Storage = s.config.Storage
	env.Document = host.NewDocument(s.config.StyleVars)
	env.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		id:      id,
		conn:    conn,
		server:  s,
		env:     env,
		owner:   reactive.NewOwner(nil),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		actions: make(map[string]func()),
	}
	host.Provide(sess.owner, env)
	sess.owner.Provide(sessionKey{}, sess)
	return sess
}

// Current returns the Session whose component is being set up, or nil.
func Current() *Session {
	if owner := reactive.CurrentOwner(); owner != nil {
		if v, ok := owner.Inject(sessionKey{}); ok {
			return v.(*Session)
		}
	}
	return nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Env returns the session's host environment.
func (s *Session) Env() *host.Env {
	return s.env
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// OnAction registers fn for {"type":"action","name":name} messages. fn
// runs on the session loop. Call it from the component.
func (s *Session) OnAction(name string, fn func()) {
	s.actions[name] = fn
}

// Push sends msg to the page.
func (s *Session) Push(msg Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("push failed", "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// run drives the session until the connection closes.
func (s *Session) run() {
	defer s.Close()

	go func() {
		if err := s.env.Loop.Run(s.ctx); err != nil && err != context.Canceled {
			s.logger.Error("loop stopped", "error", err)
		}
	}()

	if err := s.Push(Message{Type: MsgWelcome, Session: s.id}); err != nil {
		return
	}
	s.env.Loop.Dispatch(s.mount)
	go s.pingLoop()

	s.readLoop()
}

func (s *Session) mount() {
	unsubscribe := s.env.Document.OnStyleVar(func(c host.StyleVarChange) {
		_ = s.Push(Message{Type: MsgStyleVar, Name: c.Name, Value: c.Value})
	})
	s.owner.OnCleanup(unsubscribe)

	if component := s.server.config.Component; component != nil {
		reactive.WithOwner(s.owner, func() {
			component(s)
		})
	}
	s.owner.Mount()
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	readTimeout := 2 * s.server.config.PingInterval
	s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))

		msg, err := DecodeClientMessage(data)
		if err != nil {
			s.server.metrics.invalidTotal.Inc()
			s.logger.Warn("invalid message", "error", err)
			he := errors.FromError(err, "U020")
			_ = s.Push(Message{Type: MsgError, Code: he.Code, Message: he.FormatCompact()})
			continue
		}
		s.server.metrics.messagesTotal.WithLabelValues(msg.Type).Inc()
		s.env.Loop.Dispatch(func() {
			s.traceMessage(msg, func() error {
				return s.handle(msg)
			})
		})
	}
}

func (s *Session) handle(msg ClientMessage) error {
	if msg.Type != MsgAction {
		msg.apply(s.env.Window)
		return nil
	}
	fn, ok := s.actions[msg.Name]
	if !ok {
		err := errors.New("U020").WithDetailf("unknown action %q", msg.Name)
		s.logger.Warn("unknown action", "name", msg.Name)
		_ = s.Push(Message{Type: MsgError, Code: err.Code, Message: err.FormatCompact()})
		return err
	}
	fn()
	return nil
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.server.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.server.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Close disposes the component, stops the loop and closes the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		disposed := make(chan struct{})
		s.env.Loop.Dispatch(func() {
			s.owner.Dispose()
			close(disposed)
		})
		select {
		case <-disposed:
		case <-time.After(2 * time.Second):
			s.logger.Warn("component dispose timed out")
		}
		s.cancel()
		s.conn.Close()
	})
}
