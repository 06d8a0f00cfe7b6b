package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skip2/go-qrcode"

	"github.com/typerace/server/internal/middleware"
	"github.com/typerace/server/internal/protocol"
)

const (
	qrSize = 320

	defaultTopScores = 10
)

// Router assembles the full HTTP surface around the websocket endpoint.
func (h *Server) Router() http.Handler {
	mux := httprouter.New()
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		h.Logger.Errorf("Panic serving %s %s: %v", r.Method, r.URL.Path, v)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}

	mux.HandlerFunc(http.MethodGet, "/ws", h.HandleWS())

	mux.GET("/healthz", h.serveHealth)
	mux.GET("/version", h.serveVersion)
	if !h.DisableMetrics {
		mux.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	}

	mux.GET("/games/:id/qr", h.serveGameQR)
	mux.GET("/scores", h.serveTopScores)

	return mux
}

// Serve runs the HTTP server until ctx is canceled, then drains it. Read and
// write timeouts stay unset because websocket connections live for hours;
// only the header read and idle keep-alives are bounded.
func (h *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.LogMiddleware(h.Logger)(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		h.Logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (h *Server) serveHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (h *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("typerace v" + h.Version + "\n"))
}

// serveGameQR renders a join link for one pending game as a PNG QR code, so
// a phone can scan its way into the lobby.
func (h *Server) serveGameQR(w http.ResponseWriter, _ *http.Request, p httprouter.Params) {
	id, ok := protocol.ParseGameID(p.ByName("id"))
	if !ok {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	if _, ok := h.Lobby.Pending(id); !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	url := fmt.Sprintf("%s?game=%d", strings.TrimSuffix(h.ClientURL, "/"), id)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.Logger.Errorf("QR encode failed for game %d: %v", id, err)
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// serveTopScores returns the all-time best speeds from the configured store.
func (h *Server) serveTopScores(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.Scores == nil {
		http.Error(w, "no score store configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultTopScores
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.Scores.TopScores(r.Context(), limit)
	if err != nil {
		h.Logger.Errorf("Top scores query failed: %v", err)
		http.Error(w, "failed to load scores", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.Logger.Warnf("Failed to write top scores response: %v", err)
	}
}
