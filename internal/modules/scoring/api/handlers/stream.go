package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	streamRequestTimeout = 30 * time.Second
	streamWriteTimeout   = 10 * time.Second
)

// Stream message types
const (
	MessageItem    = "item"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one frame sent on the batch stream.
// Items arrive in completion order; the summary is always last.
type StreamMessage struct {
	Type    string                 `json:"type"`
	Item    *analysis.BatchItem    `json:"item,omitempty"`
	Summary *analysis.BatchSummary `json:"summary,omitempty"`
	Error   *ErrorResponse         `json:"error,omitempty"`
}

// HandleBatchStream handles GET /api/analyze/batch/stream (WebSocket).
// The client sends one BatchRequest; each finished stock is pushed as it
// completes, then the summary. Closing the socket cancels the batch.
func (h *Handlers) HandleBatchStream(w http.ResponseWriter, r *http.Request) {
	// The server's write timeout would otherwise cut long streams
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	_ = rc.SetReadDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS is enforced by the router
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	readCtx, cancelRead := context.WithTimeout(r.Context(), streamRequestTimeout)
	var req BatchRequest
	err = wsjson.Read(readCtx, conn, &req)
	cancelRead()
	if err != nil {
		h.log.Debug().Err(err).Msg("No batch request received")
		conn.Close(websocket.StatusPolicyViolation, "expected a batch request")
		return
	}

	// Any further frame or a close from the peer cancels ctx
	ctx := conn.CloseRead(r.Context())

	send := func(msg StreamMessage) error {
		writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
		defer cancel()
		return wsjson.Write(writeCtx, conn, msg)
	}

	h.log.Info().Int("stocks", len(req.Stocks)).Msg("Streaming batch analysis")

	tech, fund := weightsOrDefault(req.TechWeight, req.FundWeight)
	result, err := h.service.AnalyzeBatchStream(ctx, req.Stocks, tech, fund, func(item analysis.BatchItem) {
		if ctx.Err() != nil {
			return
		}
		if err := send(StreamMessage{Type: MessageItem, Item: &item}); err != nil {
			h.log.Debug().Err(err).Str("query", item.Query).Msg("Failed to stream batch item")
		}
	})
	if err != nil {
		_ = send(StreamMessage{Type: MessageError, Error: &ErrorResponse{
			Error: err.Error(),
			Kind:  market.KindName(err),
		}})
		conn.Close(websocket.StatusPolicyViolation, truncateReason(market.KindName(err)))
		return
	}

	if ctx.Err() != nil {
		h.log.Info().Msg("Batch stream cancelled by client")
		return
	}

	if err := send(StreamMessage{Type: MessageSummary, Summary: &result.Summary}); err != nil {
		if !errors.Is(err, context.Canceled) {
			h.log.Warn().Err(err).Msg("Failed to stream batch summary")
		}
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

// truncateReason keeps close reasons within the 123-byte control frame limit
func truncateReason(reason string) string {
	if len(reason) > 123 {
		return reason[:123]
	}
	return reason
}
