package handler

import "net/http"

// Register adds the session endpoints to mux
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", h.Create)
	mux.HandleFunc("POST /sessions/cold", h.CreateCold)
	mux.HandleFunc("GET /sessions/{id}", h.Get)
	mux.HandleFunc("DELETE /sessions/{id}", h.Delete)
	mux.HandleFunc("POST /sessions/{id}/pages", h.AddPage)
	mux.HandleFunc("POST /sessions/{id}/confirm", h.Confirm)
	mux.HandleFunc("POST /sessions/{id}/authenticate", h.Authenticate)
	mux.HandleFunc("GET /sessions/{id}/qr/{n}", h.ResultQR)
	mux.HandleFunc("GET /sessions/{id}/events", h.Events)
}
