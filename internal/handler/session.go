package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/address"
	"github.com/AlexZinkM/ergo-wallet/internal/authflow"
	"github.com/AlexZinkM/ergo-wallet/internal/crypto"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/qr"
)

const eventBuffer = 64

var (
	errSessionNotFound = errors.New("session not found")
	errObserverActive  = errors.New("session already has an observer")
)

// Unlocker opens the wallet keystore; *crypto.Keystore implements it
type Unlocker interface {
	Unlock(password []byte) (*model.WalletSecret, error)
	ReadAddress() (string, error)
}

// Options configures a SessionHandler
type Options struct {
	Keystore Unlocker
	Network  address.Network
	// Password returns a copy of the wallet password; the handler zeroes it after use
	Password   func() ([]byte, error)
	NewMachine func() *authflow.Machine
	QRSize     int
	Log        *zap.Logger
}

// SessionHandler exposes authorization sessions over HTTP
type SessionHandler struct {
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	id      uuid.UUID
	machine *authflow.Machine

	mu       sync.Mutex
	observer chan authflow.StateChanged
}

// deliver forwards a transition to the attached observer without blocking.
// It runs under the machine lock.
func (s *session) deliver(ev authflow.StateChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observer == nil {
		return
	}
	select {
	case s.observer <- ev:
	default:
	}
}

func (s *session) attach() (chan authflow.StateChanged, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observer != nil {
		return nil, errObserverActive
	}
	s.observer = make(chan authflow.StateChanged, eventBuffer)
	return s.observer, nil
}

func (s *session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = nil
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(opts Options) (*SessionHandler, error) {
	if opts.Keystore == nil {
		return nil, errors.New("keystore not set")
	}
	if opts.Password == nil {
		return nil, errors.New("password source not set")
	}
	if opts.NewMachine == nil {
		return nil, errors.New("machine factory not set")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.QRSize <= 0 {
		opts.QRSize = qr.DefaultSize
	}

	return &SessionHandler{
		opts: opts,
		log:  opts.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[uuid.UUID]*session),
	}, nil
}

func (h *SessionHandler) newSession() *session {
	s := &session{id: uuid.New(), machine: h.opts.NewMachine()}
	s.machine.SetListener(s.deliver)

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	return s
}

func (h *SessionHandler) lookup(r *http.Request) (*session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, errSessionNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

// Close ends every session
func (h *SessionHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.machine.Close()
		delete(h.sessions, id)
	}
}

// Create handles POST /sessions
// @Summary      Start an ErgoPay or ErgoAuth session
// @Description  Classifies the URI and fetches the request in the background
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSessionRequest  true  "Request URI"
// @Success      201      {object}  SessionResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.URI == "" {
		writeError(w, http.StatusBadRequest, errors.New("uri is required"))
		return
	}

	addr := req.Address
	if addr == "" {
		var err error
		addr, err = h.opts.Keystore.ReadAddress()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if err := address.Validate(addr, h.opts.Network); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s := h.newSession()
	s.machine.Init(authflow.Request{URI: req.URI, Address: addr})
	h.log.Info("session created", zap.String("session", s.id.String()), zap.String("uri", req.URI))

	writeJSON(w, http.StatusCreated, SessionResponse{ID: s.id.String(), Session: s.machine.Snapshot()})
}

// CreateCold handles POST /sessions/cold
// @Summary      Start a cold signing session
// @Description  Starts scanning cold signing request pages
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  SessionResponse
// @Router       /sessions/cold [post]
func (h *SessionHandler) CreateCold(w http.ResponseWriter, r *http.Request) {
	s := h.newSession()
	s.machine.InitCold()
	h.log.Info("cold session created", zap.String("session", s.id.String()))

	writeJSON(w, http.StatusCreated, SessionResponse{ID: s.id.String(), Session: s.machine.Snapshot()})
}

// Get handles GET /sessions/{id}
// @Summary      Get session state
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  SessionResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: s.id.String(), Session: s.machine.Snapshot()})
}

// Delete handles DELETE /sessions/{id}
// @Summary      Cancel a session
// @Tags         sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()
	s.machine.Close()

	w.WriteHeader(http.StatusNoContent)
}

// AddPage handles POST /sessions/{id}/pages
// @Summary      Add a scanned page
// @Description  Feeds one scanned cold signing request page
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Session ID"
// @Param        request  body      AddPageRequest  true  "Page text"
// @Success      200      {object}  AddPageResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /sessions/{id}/pages [post]
func (h *SessionHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var req AddPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	added, err := s.machine.AddPage(req.Page)
	if err != nil {
		if errors.Is(err, authflow.ErrInvalidState) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, AddPageResponse{Added: added, Session: s.machine.Snapshot()})
}

// Confirm handles POST /sessions/{id}/confirm
// @Summary      Confirm a transaction
// @Description  Unlocks the wallet and signs the pending transaction in the background
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      202  {object}  SessionResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/confirm [post]
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*authflow.Machine).Confirm)
}

// Authenticate handles POST /sessions/{id}/authenticate
// @Summary      Answer an authentication request
// @Description  Unlocks the wallet and signs the ErgoAuth challenge in the background
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      202  {object}  SessionResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/authenticate [post]
func (h *SessionHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*authflow.Machine).Authenticate)
}

func (h *SessionHandler) submit(w http.ResponseWriter, r *http.Request, action func(*authflow.Machine, *model.WalletSecret) error) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, err := h.opts.Password()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	secret, err := h.opts.Keystore.Unlock(passwordBytes)
	clear(passwordBytes)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidPassword) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := action(s.machine, secret); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, SessionResponse{ID: s.id.String(), Session: s.machine.Snapshot()})
}

// ResultQR handles GET /sessions/{id}/qr/{n}
// @Summary      Get a result page as QR image
// @Description  Renders page n (1-based) of the signed cold signing result
// @Tags         sessions
// @Produce      png
// @Param        id   path      string   true  "Session ID"
// @Param        n    path      integer  true  "Page number"
// @Success      200  {file}    binary
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id}/qr/{n} [get]
func (h *SessionHandler) ResultQR(w http.ResponseWriter, r *http.Request) {
	s, err := h.lookup(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	pages := s.machine.Snapshot().ResultPages
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 || n > len(pages) {
		writeError(w, http.StatusNotFound, fmt.Errorf("page %q not available, session has %d result pages", r.PathValue("n"), len(pages)))
		return
	}

	png, err := qr.PNG(pages[n-1], h.opts.QRSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
