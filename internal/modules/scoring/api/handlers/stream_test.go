package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func dialStream(t *testing.T) (*websocket.Conn, context.Context) {
	srv := httptest.NewServer(newTestRouter())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/analyze/batch/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func TestHandleBatchStream(t *testing.T) {
	conn, ctx := dialStream(t)

	require.NoError(t, wsjson.Write(ctx, conn, BatchRequest{Stocks: []string{"005930", "999999", "000660"}}))

	items := make(map[string]StreamMessage)
	var summary *StreamMessage
	for summary == nil {
		var msg StreamMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))

		switch msg.Type {
		case MessageItem:
			require.NotNil(t, msg.Item)
			items[msg.Item.Query] = msg
		case MessageSummary:
			summary = &msg
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}

	assert.Len(t, items, 3, "every item is streamed before the summary")
	assert.NotNil(t, items["005930"].Item.Analysis)
	assert.Equal(t, "NotFound", items["999999"].Item.ErrorKind)

	require.NotNil(t, summary.Summary)
	assert.Equal(t, 2, summary.Summary.TotalAnalyzed)
	assert.Equal(t, 1, summary.Summary.Failed)

	// server closes normally after the summary
	var extra StreamMessage
	err := wsjson.Read(ctx, conn, &extra)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestHandleBatchStream_RejectedBatch(t *testing.T) {
	conn, ctx := dialStream(t)

	require.NoError(t, wsjson.Write(ctx, conn, BatchRequest{Stocks: []string{}}))

	var msg StreamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, MessageError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Equal(t, "EmptyBatch", msg.Error.Kind)

	err := wsjson.Read(ctx, conn, &msg)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestHandleBatchStream_InvalidRequest(t *testing.T) {
	conn, ctx := dialStream(t)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))

	var msg StreamMessage
	err := wsjson.Read(ctx, conn, &msg)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}
