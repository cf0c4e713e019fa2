package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-dev/reflow/pkg/reflow"
)

// Session is one WebSocket client bound to its own reactivity runtime.
// All store access and effect execution happens on the read loop
// goroutine; only the write path is guarded for the server's benefit.
type Session struct {
	id     string
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger

	rt    *reflow.Runtime
	store *reflow.Object
	scope *reflow.Scope

	// watchers maps a subscribed key to the effect observing it.
	watchers map[string]*reflow.Effect

	// changes and removed accumulate during a flush and are drained
	// into a single patch at the end of each message turn.
	changes map[string]any
	removed map[string]struct{}

	seq    atomic.Uint64
	closed atomic.Bool

	writeMu sync.Mutex
}

func newSession(id string, conn *websocket.Conn, srv *Server) *Session {
	s := &Session{
		id:       id,
		conn:     conn,
		server:   srv,
		logger:   srv.logger.With("session", id),
		watchers: make(map[string]*reflow.Effect),
		changes:  make(map[string]any),
		removed:  make(map[string]struct{}),
	}

	s.rt = reflow.NewRuntime(
		reflow.WithLogger(s.logger),
		reflow.WithQueue(
			reflow.WithFlushLimit(srv.config.FlushLimit),
			reflow.WithErrorHandler(func(err error) {
				if errors.Is(err, reflow.ErrUpdateLoop) {
					srv.metrics.updateLoops.Inc()
					return
				}
				srv.metrics.flushErrors.Inc()
			}),
		),
	)
	s.store = reflow.NewObject(s.rt, srv.seedStore())
	s.scope = reflow.NewScope(nil)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ReadLoop reads client frames until the connection drops. Every frame
// is handled inline on this goroutine: the handler mutates the store,
// the queue flush runs the watch effects, and the accumulated changes
// go out as one patch.
func (s *Session) ReadLoop() {
	defer s.teardown()

	s.sendHello()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		env, err := DecodeEnvelope(msg)
		if err != nil {
			s.logger.Error("envelope decode error", "error", err)
			s.sendError(err.Error())
			s.server.metrics.eventsTotal.WithLabelValues("invalid", "error").Inc()
			continue
		}

		s.handleEnvelope(env)
	}
}

// handleEnvelope runs one message turn: dispatch, flush, patch.
func (s *Session) handleEnvelope(env *Envelope) {
	start := time.Now()
	status := "ok"

	ctx, span := s.server.tracer.Start(context.Background(),
		fmt.Sprintf("live.%s", env.Type),
		trace.WithAttributes(
			attribute.String("live.session_id", s.id),
			attribute.String("live.message_type", env.Type),
		))
	defer span.End()

	if !s.safeDispatch(env) {
		status = "panic"
		span.SetStatus(codes.Error, "handler panic")
	}

	// Run everything the mutations deferred, then drain the turn's
	// accumulated changes into a single frame.
	s.rt.Queue().Flush()
	s.flushPatch(ctx)

	s.server.metrics.eventsTotal.WithLabelValues(env.Type, status).Inc()
	s.server.metrics.eventDuration.Observe(time.Since(start).Seconds())
}

// safeDispatch applies a client message with panic recovery. It
// reports whether the dispatch completed.
func (s *Session) safeDispatch(env *Envelope) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message panic",
				"type", env.Type,
				"panic", r,
				"stack", string(debug.Stack()))
			s.sendError("internal error")
			ok = false
		}
	}()

	switch env.Type {
	case TypeSubscribe:
		for _, key := range env.Keys {
			s.subscribe(key)
		}

	case TypeUnsubscribe:
		for _, key := range env.Keys {
			s.unsubscribe(key)
		}

	case TypeSet:
		s.store.Set(env.Key, env.Value)

	case TypeDelete:
		s.store.Delete(env.Key)

	case TypeClear:
		s.store.Clear()

	case TypeTx:
		for _, op := range env.Ops {
			s.applyOp(op)
		}

	case TypePing:
		s.sendPong()

	default:
		s.logger.Warn("unknown message type", "type", env.Type)
	}
	return true
}

func (s *Session) applyOp(op Op) {
	switch op.Action {
	case TypeSet:
		s.store.Set(op.Key, op.Value)
	case TypeDelete:
		s.store.Delete(op.Key)
	case TypeClear:
		s.store.Clear()
	}
}

// subscribe installs a deferred watch effect for key. The effect reads
// the key so it re-runs on every change, recording the new value for
// the next patch. The initial run seeds both the dependency and the
// first patch entry.
func (s *Session) subscribe(key string) {
	if _, exists := s.watchers[key]; exists {
		return
	}

	e := s.rt.NewEffect(func() any {
		if s.store.Has(key) {
			s.changes[key] = reflow.ToRaw(s.store.Get(key))
			delete(s.removed, key)
		} else {
			s.removed[key] = struct{}{}
			delete(s.changes, key)
		}
		s.server.metrics.effectRuns.Inc()
		return nil
	},
		reflow.WithLazy(),
		reflow.Deferred(),
		reflow.WithName("watch:"+key),
	)
	e.Run()

	s.scope.Add(e)
	s.watchers[key] = e
	s.logger.Debug("subscribed", "key", key)
}

func (s *Session) unsubscribe(key string) {
	e, exists := s.watchers[key]
	if !exists {
		return
	}
	e.Stop()
	delete(s.watchers, key)
	delete(s.changes, key)
	delete(s.removed, key)
	s.logger.Debug("unsubscribed", "key", key)
}

// flushPatch sends the turn's accumulated changes, if any.
func (s *Session) flushPatch(ctx context.Context) {
	if len(s.changes) == 0 && len(s.removed) == 0 {
		return
	}

	patch := &Patch{
		Type:    TypePatch,
		Seq:     s.seq.Add(1),
		Changes: s.changes,
	}
	for key := range s.removed {
		patch.Removed = append(patch.Removed, key)
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("live.patch_changes", len(patch.Changes)),
		attribute.Int("live.patch_removed", len(patch.Removed)),
	)

	if err := s.writeJSON(patch); err != nil {
		s.logger.Error("patch write error", "error", err, "seq", patch.Seq)
		return
	}
	s.server.metrics.patchesSent.Inc()

	s.changes = make(map[string]any)
	s.removed = make(map[string]struct{})
}

func (s *Session) sendHello() {
	if err := s.writeJSON(&Patch{Type: TypeHello, Session: s.id}); err != nil {
		s.logger.Error("hello write error", "error", err)
	}
}

func (s *Session) sendPong() {
	if err := s.writeJSON(&Patch{Type: TypePong}); err != nil {
		s.logger.Error("pong write error", "error", err)
	}
}

func (s *Session) sendError(msg string) {
	if err := s.writeJSON(&Patch{Type: TypeError, Error: msg}); err != nil {
		s.logger.Error("error write error", "error", err)
	}
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
	return s.conn.WriteJSON(v)
}

// Close marks the session closed and closes the connection, which
// unblocks the read loop. Safe to call from any goroutine; the runtime
// itself is confined to the read loop goroutine, so the reactive
// teardown happens there, not here. Idempotent.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.conn.Close()
	s.server.removeSession(s)
}

// teardown disposes the session's reactive state. It runs as the read
// loop's deferred exit, on the only goroutine that ever touches the
// runtime.
func (s *Session) teardown() {
	s.Close()
	s.scope.Dispose()
	s.rt.Release(s.store)
	s.logger.Info("session closed", "seq", s.seq.Load())
}
