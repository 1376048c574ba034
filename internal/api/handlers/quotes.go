package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// DefaultQuoteInterval is the push period when none is configured
	DefaultQuoteInterval = 15 * time.Second
)

// QuoteSource looks up live quotes keyed by symbol
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error)
}

// QuoteMessage is one websocket push
type QuoteMessage struct {
	Screener contracts.ScreenerID       `json:"screener"`
	Quotes   map[string]contracts.Quote `json:"quotes"`
	At       time.Time                  `json:"at"`
	Error    string                     `json:"error,omitempty"`
}

// QuoteStreamHandler pushes live quotes for the symbols of a snapshot
// ⭐ SSOT: 실시간 시세 푸시는 이 핸들러에서만
type QuoteStreamHandler struct {
	store    contracts.SnapshotStore
	quotes   QuoteSource
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewQuoteStreamHandler creates a new quote stream handler
func NewQuoteStreamHandler(store contracts.SnapshotStore, quotes QuoteSource, interval time.Duration, log *logger.Logger) *QuoteStreamHandler {
	if interval <= 0 {
		interval = DefaultQuoteInterval
	}
	return &QuoteStreamHandler{
		store:    store,
		quotes:   quotes,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: log,
	}
}

// Stream upgrades the connection and pushes quotes until the client leaves
// GET /ws/quotes/{id}
func (h *QuoteStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := screenerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.store.Latest(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("screener", string(id)).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve snapshot")
		return
	}
	if report == nil || report.Len() == 0 {
		respondError(w, http.StatusNotFound, "No symbols to stream for "+string(id))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	symbols := report.Symbols()
	log := h.logger.WithFields(map[string]interface{}{
		"screener": string(id),
		"symbols":  len(symbols),
	})
	log.Info("Quote stream opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 읽기 루프: close/pong 처리 및 연결 종료 감지
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn, id, symbols); err != nil {
			log.WithError(err).Debug("Quote stream write failed")
			break
		}

		select {
		case <-ctx.Done():
			log.Info("Quote stream closed")
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// push sends one quote message; a lookup failure is reported in-band
func (h *QuoteStreamHandler) push(ctx context.Context, conn *websocket.Conn, id contracts.ScreenerID, symbols []string) error {
	msg := QuoteMessage{Screener: id, At: time.Now().UTC()}

	quotes, err := h.quotes.Quotes(ctx, symbols)
	if err != nil {
		msg.Error = "quotes unavailable"
		msg.Quotes = map[string]contracts.Quote{}
	} else {
		msg.Quotes = quotes
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
