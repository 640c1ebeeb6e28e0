package board

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/blackboard/blackboard/internal/collab"
	"github.com/blackboard/blackboard/internal/command"
	"github.com/blackboard/blackboard/internal/storage"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the board routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/boards", h.List).Methods("GET")
	r.HandleFunc("/boards", h.Create).Methods("POST")
	r.HandleFunc("/boards/{name}/open", h.Open).Methods("POST")
	r.HandleFunc("/boards/{name}", h.Delete).Methods("DELETE")
	r.HandleFunc("/document", h.Document).Methods("GET")
	r.HandleFunc("/hit", h.HitTest).Methods("GET")
	r.HandleFunc("/commands", h.Submit).Methods("POST")
}

type createRequest struct {
	Name string `json:"name"`
	Open bool   `json:"open"`
}

type commandResponse struct {
	Seq     int64 `json:"seq"`
	Changed bool  `json:"changed"`
	Result  any   `json:"result,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	board, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if req.Open {
		if err := h.service.Open(r.Context(), board.Name); err != nil {
			handleServiceError(w, err)
			return
		}
		board.Current = true
	}
	writeJSON(w, http.StatusCreated, board)
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Open(r.Context(), mux.Vars(r)["name"]); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.Board{Name: h.service.Current(), Current: true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Document(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}

	id, err := h.service.HitTest(r.Context(), x, y)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd command.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	out, err := h.service.Submit(r.Context(), cmd)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Seq: out.Seq, Changed: out.Changed, Result: out.Result})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrBoardNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "board not found"})
	case errors.Is(err, storage.ErrBoardExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "board already exists"})
	case errors.Is(err, storage.ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid board name"})
	case errors.Is(err, command.ErrUnknownCommand), errors.Is(err, command.ErrInvalidCommand):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, collab.ErrHubStopped):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	default:
		slog.Error("board request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
