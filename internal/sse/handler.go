package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// writeTimeout bounds each frame write. Heartbeats keep idle streams inside it.
const writeTimeout = 2 * heartbeatInterval

// Handler serves the event stream at GET /api/v1/events.
//
// Query parameters narrow the stream:
//
//	types=reminder.fired,resume.recorded
//	interruption=<interruption id>
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a Handler over manager.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{manager: manager, logger: logger}
}

type connectedData struct {
	ClientID       string      `json:"clientId"`
	Types          []EventType `json:"types,omitempty"`
	InterruptionID string      `json:"interruptionId,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	q := r.URL.Query()
	filter := ParseFilter(q.Get("types"), q.Get("interruption"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming unsupported", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(filter)
	if err != nil {
		h.logger.Error("failed to register event client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))

	hello := connectedData{
		ClientID:       client.ID,
		Types:          filter.Types,
		InterruptionID: string(filter.InterruptionID),
	}
	if err := h.write(w, rc, "connected", hello); err != nil {
		log.Warn("failed to send connected frame", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case ev, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.write(w, rc, string(ev.Type), ev); err != nil {
				log.Debug("client went away mid-write", slog.String("error", err.Error()))
				return
			}
		case <-client.Done:
			log.Debug("client closed by manager")
			return
		case <-r.Context().Done():
			return
		}
	}
}

// write sends one SSE frame and flushes it.
func (h *Handler) write(w http.ResponseWriter, rc *http.ResponseController, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", name, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Not every ResponseWriter supports deadlines; recorder-backed tests do not.
	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		h.logger.Debug("write deadline unsupported", slog.String("error", err.Error()))
	}
	return nil
}
