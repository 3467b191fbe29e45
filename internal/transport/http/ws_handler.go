package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/domain"
)

// Outbound and inbound WebSocket message types.
const (
	msgState        = "state"
	msgLockout      = "lockout"
	msgReveal       = "reveal"
	msgAnswerResult = "answerResult"
	msgError        = "error"

	cmdStart   = "start"
	cmdAnswer  = "answer"
	cmdConfirm = "confirm"
)

type WSHandler struct {
	machine  *app.Machine
	gate     *app.RevealGate
	clock    app.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(machine *app.Machine, gate *app.RevealGate, clock app.Clock, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WSHandler{
		machine: machine,
		gate:    gate,
		clock:   clock,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams state snapshots and countdown ticks
// to the client while applying its commands to the machine.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := h.logger.With("conn", uuid.NewString())
	logger.Info("ws connected")
	defer logger.Info("ws disconnected")

	updates, unsubscribe := h.machine.Subscribe()
	defer unsubscribe()

	s := &wsSession{
		handler: h,
		logger:  logger,
		send:    make(chan outboundMessage[any], 32),
		closing: make(chan struct{}),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range s.send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	updatesDone := make(chan struct{})
	go func() {
		defer close(updatesDone)
		s.forward(updates)
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		s.handle(r.Context(), inbound)
	}

	close(s.closing)
	<-updatesDone
	s.stopTimer()
	close(s.send)
	<-writerDone
}

// wsSession is the per-connection state. Countdown timers here only feed the
// display; ending a lockout is left to the app.LockoutSupervisor.
type wsSession struct {
	handler *WSHandler
	logger  *slog.Logger
	send    chan outboundMessage[any]
	closing chan struct{}

	timerWG     sync.WaitGroup
	timerCancel context.CancelFunc
	timerKey    string
}

func (s *wsSession) emit(typ string, payload any) bool {
	select {
	case s.send <- outboundMessage[any]{Type: typ, Payload: payload}:
		return true
	case <-s.closing:
		return false
	}
}

func (s *wsSession) view(snap domain.Snapshot) domain.StateView {
	return app.BuildView(snap, s.handler.clock.Now())
}

func (s *wsSession) forward(updates <-chan domain.Snapshot) {
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !s.emit(msgState, s.view(snap)) {
				return
			}
			s.syncTimer(snap)
		case <-s.closing:
			return
		}
	}
}

// syncTimer runs the countdown that matches the snapshot's phase: the lockout
// countdown while locked, the reveal countdown once completed, none otherwise.
func (s *wsSession) syncTimer(snap domain.Snapshot) {
	key := ""
	switch snap.Phase {
	case domain.PhaseLocked:
		key = "lockout:" + snap.LockoutExpiry.String()
	case domain.PhaseCompleted:
		if s.handler.gate != nil {
			key = "reveal"
		}
	}
	if key == s.timerKey {
		return
	}
	s.stopTimer()
	s.timerKey = key
	if key == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.timerCancel = cancel
	s.timerWG.Add(1)
	go func() {
		defer s.timerWG.Done()
		if snap.Phase == domain.PhaseLocked {
			timer := app.NewLockoutTimer(s.handler.clock, app.TickPeriod)
			timer.Run(ctx, snap.LockoutExpiry, snap.LockoutDuration, func(r domain.LockoutRemaining) {
				s.emit(msgLockout, r)
			}, nil)
			return
		}
		s.handler.gate.Run(ctx, func(status domain.RevealStatus) {
			s.emit(msgReveal, status)
		})
	}()
}

func (s *wsSession) stopTimer() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
	s.timerWG.Wait()
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type answerResultPayload struct {
	Correct bool             `json:"correct"`
	State   domain.StateView `json:"state"`
}

func (s *wsSession) handle(ctx context.Context, inbound inboundMessage) {
	machine := s.handler.machine
	switch inbound.Type {
	case cmdStart:
		_, err := machine.Start(ctx)
		s.absorb(err)
	case cmdAnswer:
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			s.emit(msgError, errorPayload{Message: "invalid answer payload"})
			return
		}
		result, err := machine.SubmitAnswer(ctx, payload.Answer)
		if s.absorb(err) {
			return
		}
		s.emit(msgAnswerResult, answerResultPayload{Correct: result.Correct, State: s.view(result.Snapshot)})
	case cmdConfirm:
		result, err := machine.Confirm(ctx)
		if s.absorb(err) {
			return
		}
		s.emit(msgAnswerResult, answerResultPayload{Correct: result.Correct, State: s.view(result.Snapshot)})
	default:
		s.emit(msgError, errorPayload{Message: "unsupported message type"})
	}
}

// absorb reports whether err rejected the command. Rejected commands are not
// errors for the client: it simply gets the current state again.
func (s *wsSession) absorb(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrWrongPhase) || errors.Is(err, domain.ErrNotConfirmation) {
		s.logger.Debug("command ignored", "error", err)
	} else {
		s.logger.Warn("command failed", "error", err)
	}
	s.emit(msgState, s.view(s.handler.machine.Snapshot()))
	return true
}
