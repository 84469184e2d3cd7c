// Package ws streams live board changes to browsers and accepts the
// high-frequency pointer input that would be wasteful as unary calls.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/interact"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingEvery  = (pongWait * 9) / 10
	outboxSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// StreamObserver counts open streams.
type StreamObserver interface {
	StreamOpened()
	StreamClosed()
}

type BoardStreamHandler struct {
	svc      *gatewaystudio.Service
	observer StreamObserver
	logger   *zap.Logger
	buffer   int
}

func NewBoardStreamHandler(svc *gatewaystudio.Service, observer StreamObserver, logger *zap.Logger, buffer int) *BoardStreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &BoardStreamHandler{svc: svc, observer: observer, logger: logger, buffer: buffer}
}

type inbound struct {
	Type string `json:"type"`

	Pos      geom.Point        `json:"pos"`
	Shift    bool              `json:"shift,omitempty"`
	Target   *interact.Target  `json:"target,omitempty"`
	DeltaY   float64           `json:"delta_y,omitempty"`
	Modifier bool              `json:"modifier,omitempty"`
	Key      interact.KeyEvent `json:"key"`
	Action   board.ZoomAction  `json:"action,omitempty"`
	ScreenW  float64           `json:"screen_w,omitempty"`
	ScreenH  float64           `json:"screen_h,omitempty"`
}

type outbound struct {
	Type    string                   `json:"type"`
	BoardID string                   `json:"board_id,omitempty"`
	Board   *gatewaystudio.BoardInfo `json:"board,omitempty"`
	Event   *board.Event             `json:"event,omitempty"`
	View    *board.View              `json:"view,omitempty"`
	Result  *interact.KeyResult      `json:"result,omitempty"`
	Code    string                   `json:"code,omitempty"`
	Message string                   `json:"message,omitempty"`
}

// HandleBoardStream serves /ws/boards?board_id=. The first message is a
// full board snapshot; board events follow in sequence order. When the
// stream falls behind and messages are lost, a "resync" message carrying a
// fresh snapshot replaces what was dropped.
func (h *BoardStreamHandler) HandleBoardStream(w http.ResponseWriter, r *http.Request) {
	boardID := strings.TrimSpace(r.URL.Query().Get("board_id"))
	if boardID == "" {
		http.Error(w, "board_id is required", http.StatusBadRequest)
		return
	}
	b, err := h.svc.Board(r.Context(), boardID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	if h.observer != nil {
		h.observer.StreamOpened()
		defer h.observer.StreamClosed()
	}
	logger := h.logger.With(zap.String("board_id", boardID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Warn("board stream set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Subscribe before reading the snapshot so nothing falls in between.
	events := b.Events.Subscribe(ctx, h.buffer)
	seq := seqTracker{last: b.Events.Seq()}
	info, err := h.svc.GetBoard(ctx, &gatewaystudio.GetBoardRequest{BoardID: boardID})
	if err != nil {
		_ = write(conn, outbound{Type: "error", Code: "internal", Message: err.Error()})
		return
	}
	if err := write(conn, outbound{Type: "subscribed", BoardID: boardID, Board: &info.Board}); err != nil {
		return
	}

	resync := make(chan struct{}, 1)
	requestResync := func() {
		select {
		case resync <- struct{}{}:
		default:
		}
	}
	writeCh := make(chan outbound, outboxSize)
	enqueue := func(out outbound) {
		if push(writeCh, out) {
			requestResync()
		}
	}
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := write(conn, out); err != nil {
					return
				}
			case <-resync:
				info, err := h.svc.GetBoard(ctx, &gatewaystudio.GetBoardRequest{BoardID: boardID})
				if err != nil {
					logger.Warn("board stream resync failed", zap.Error(err))
					continue
				}
				if err := write(conn, outbound{Type: "resync", BoardID: boardID, Board: &info.Board}); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					enqueue(outbound{Type: "closed", BoardID: boardID})
					return
				}
				if seq.gap(ev.Seq) {
					requestResync()
				}
				enqueue(outbound{Type: "event", BoardID: boardID, Event: &ev})
			}
		}
	}()

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		if msgType == "" {
			enqueue(outbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
			continue
		}
		if out, ok := h.dispatch(b, msgType, in); ok {
			enqueue(out)
		}
	}
}

// dispatch applies one client message. Pointer moves are answered only
// through the event stream.
func (h *BoardStreamHandler) dispatch(b *board.Board, msgType string, in inbound) (outbound, bool) {
	view := func(v board.View) (outbound, bool) { return outbound{Type: "view", View: &v}, true }
	pointer := interact.PointerEvent{Pos: in.Pos, Shift: in.Shift, Target: in.Target}

	switch msgType {
	case "ping":
		return outbound{Type: "pong"}, true
	case "pointer_down", "pointer_up", "pointer_leave":
		phase := gatewaystudio.PointerPhase(strings.TrimPrefix(msgType, "pointer_"))
		v, err := gatewaystudio.ApplyPointer(b, phase, pointer)
		if err != nil {
			return errorOut(err), true
		}
		return view(v)
	case "pointer_move":
		b.PointerMove(in.Pos)
		return outbound{}, false
	case "wheel":
		return view(b.Wheel(in.DeltaY, in.Modifier))
	case "zoom":
		v, ok := b.Zoom(in.Action, in.ScreenW, in.ScreenH)
		if !ok {
			return outbound{Type: "error", Code: "invalid_argument", Message: "unknown zoom action: " + string(in.Action)}, true
		}
		return view(v)
	case "key":
		res, v := b.Key(in.Key)
		return outbound{Type: "key_result", Result: &res, View: &v}, true
	default:
		return outbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + msgType}, true
	}
}

func errorOut(err error) outbound {
	code := "internal"
	if errors.Is(err, gatewaystudio.ErrInvalidArgument) {
		code = "invalid_argument"
	}
	return outbound{Type: "error", Code: code, Message: err.Error()}
}

// seqTracker spots events lost upstream by the broker.
type seqTracker struct{ last int64 }

func (s *seqTracker) gap(seq int64) bool {
	lost := seq > s.last+1
	s.last = max(s.last, seq)
	return lost
}

func write(conn *websocket.Conn, out outbound) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(out)
}

// push enqueues out, dropping the oldest queued message when the client
// is not keeping up. It reports whether anything was lost.
func push(writeCh chan outbound, out outbound) (dropped bool) {
	if writeCh == nil {
		return false
	}
	select {
	case writeCh <- out:
		return false
	default:
	}
	select {
	case <-writeCh:
		dropped = true
	default:
	}
	select {
	case writeCh <- out:
	default:
		dropped = true
	}
	return dropped
}
