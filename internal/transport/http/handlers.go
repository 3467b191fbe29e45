package http

import (
	"errors"
	"log/slog"
	"net/http"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/domain"
)

type apiHandler struct {
	machine *app.Machine
	gate    *app.RevealGate
	clock   app.Clock
	logger  *slog.Logger
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Correct bool             `json:"correct"`
	State   domain.StateView `json:"state"`
}

type conflictResponse struct {
	Error string           `json:"error"`
	State domain.StateView `json:"state"`
}

func (h *apiHandler) view(snap domain.Snapshot) domain.StateView {
	return app.BuildView(snap, h.clock.Now())
}

func (h *apiHandler) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.view(h.machine.Snapshot()))
}

func (h *apiHandler) start(w http.ResponseWriter, r *http.Request) {
	snap, err := h.machine.Start(r.Context())
	if err != nil {
		h.conflict(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, h.view(snap))
}

func (h *apiHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.machine.SubmitAnswer(r.Context(), req.Answer)
	if err != nil {
		h.conflict(w, err, result.Snapshot)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Correct: result.Correct, State: h.view(result.Snapshot)})
}

func (h *apiHandler) confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.machine.Confirm(r.Context())
	if err != nil {
		h.conflict(w, err, result.Snapshot)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Correct: result.Correct, State: h.view(result.Snapshot)})
}

func (h *apiHandler) reveal(w http.ResponseWriter, _ *http.Request) {
	if h.machine.Snapshot().Phase != domain.PhaseCompleted {
		writeError(w, http.StatusConflict, domain.ErrGateClosed.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.gate.Status())
}

// conflict reports a rejected command together with the unchanged state.
func (h *apiHandler) conflict(w http.ResponseWriter, err error, snap domain.Snapshot) {
	if !errors.Is(err, domain.ErrWrongPhase) && !errors.Is(err, domain.ErrNotConfirmation) {
		h.logger.Error("command failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.logger.Debug("command rejected", "phase", snap.Phase, "error", err)
	writeJSON(w, http.StatusConflict, conflictResponse{Error: err.Error(), State: h.view(snap)})
}
