package studio

import (
	"fmt"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/interact"
)

// ApplyPointer forwards one pointer event to the board's controller.
func ApplyPointer(b *board.Board, phase PointerPhase, ev interact.PointerEvent) (board.View, error) {
	switch phase {
	case PointerDown:
		return b.PointerDown(ev), nil
	case PointerMove:
		return b.PointerMove(ev.Pos), nil
	case PointerUp:
		return b.PointerUp(), nil
	case PointerLeave:
		return b.PointerLeave(), nil
	default:
		return board.View{}, fmt.Errorf("%w: unknown pointer phase %q", ErrInvalidArgument, phase)
	}
}
