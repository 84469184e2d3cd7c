package studio

import (
	"time"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/canvas/interact"
	"adcanvas/internal/catalog"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	core "adcanvas/internal/studio"
)

type BoardInfo struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Version     int64                 `json:"version"`
	Document    graph.Document        `json:"document"`
	View        board.View            `json:"view"`
	Product     core.ProductProfile   `json:"product"`
	Params      core.GenerationParams `json:"params"`
	Instruction string                `json:"instruction,omitempty"`
	Generation  Generation            `json:"generation"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Generation reports whether the AI collaborator is usable.
type Generation struct {
	Configured bool   `json:"configured"`
	Reason     string `json:"reason,omitempty"`
}

type TaskInfo struct {
	ID     string  `json:"id"`
	NodeID string  `json:"node_id"`
	Op     core.Op `json:"op"`
}

type CreateBoardRequest struct {
	Name string `json:"name,omitempty"`
}

type GetBoardRequest struct {
	BoardID string `json:"board_id"`
}

type BoardResponse struct {
	Board BoardInfo `json:"board"`
}

type SetProductRequest struct {
	BoardID     string                 `json:"board_id"`
	Product     core.ProductProfile    `json:"product"`
	Params      *core.GenerationParams `json:"params,omitempty"`
	Instruction *string                `json:"instruction,omitempty"`
}

type SetProductResponse struct {
	Product     core.ProductProfile   `json:"product"`
	Params      core.GenerationParams `json:"params"`
	Instruction string                `json:"instruction,omitempty"`
}

type GenerateRequest struct {
	BoardID string `json:"board_id"`
	// Params overrides the board's stored parameters for this batch.
	Params *core.GenerationParams `json:"params,omitempty"`
}

type GenerateFromTemplateRequest struct {
	BoardID    string `json:"board_id"`
	TemplateID string `json:"template_id"`
}

type RemixRequest struct {
	BoardID string `json:"board_id"`
	NodeID  string `json:"node_id"`
}

type CombineRequest struct {
	BoardID string `json:"board_id"`
	// NodeIDs replaces the selection before combining when set.
	NodeIDs     []string `json:"node_ids,omitempty"`
	Instruction string   `json:"instruction,omitempty"`
}

type CaptionRequest struct {
	BoardID  string `json:"board_id"`
	NodeID   string `json:"node_id"`
	Language string `json:"language,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type TasksResponse struct {
	Tasks      []TaskInfo `json:"tasks"`
	Generation Generation `json:"generation"`
}

type ImportImageRequest struct {
	BoardID string  `json:"board_id"`
	Name    string  `json:"name"`
	DataURI string  `json:"data_uri"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type NodeResponse struct {
	Node graph.Node `json:"node"`
}

// PointerPhase names the pointer event being forwarded.
type PointerPhase string

const (
	PointerDown  PointerPhase = "down"
	PointerMove  PointerPhase = "move"
	PointerUp    PointerPhase = "up"
	PointerLeave PointerPhase = "leave"
)

type PointerRequest struct {
	BoardID string                `json:"board_id"`
	Phase   PointerPhase          `json:"phase"`
	Event   interact.PointerEvent `json:"event"`
}

type WheelRequest struct {
	BoardID  string  `json:"board_id"`
	DeltaY   float64 `json:"delta_y"`
	Modifier bool    `json:"modifier,omitempty"`
}

type ZoomRequest struct {
	BoardID string           `json:"board_id"`
	Action  board.ZoomAction `json:"action"`
	ScreenW float64          `json:"screen_w,omitempty"`
	ScreenH float64          `json:"screen_h,omitempty"`
}

type ViewResponse struct {
	View board.View `json:"view"`
}

type KeyRequest struct {
	BoardID string            `json:"board_id"`
	Event   interact.KeyEvent `json:"event"`
}

type KeyResponse struct {
	Result interact.KeyResult `json:"result"`
	View   board.View         `json:"view"`
}

type PublishRequest struct {
	BoardID string `json:"board_id"`
	publish.Request
}

type PublishResponse struct {
	publish.Result
}

type ListTemplatesRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

// Options are the catalog vocabularies a client offers in its pickers.
type Options struct {
	Styles     []string `json:"styles"`
	Goals      []string `json:"goals"`
	Formats    []string `json:"formats"`
	CloneModes []string `json:"clone_modes"`
	Languages  []string `json:"languages"`
	Tones      []string `json:"tones"`
	Categories []string `json:"categories"`
}

type ListTemplatesResponse struct {
	Templates []catalog.Template `json:"templates"`
	Options   Options            `json:"options"`
}

type SaveBoardRequest struct {
	BoardID string `json:"board_id"`
}

type SaveBoardResponse struct {
	Summary board.Summary `json:"summary"`
}

type LoadBoardRequest struct {
	BoardID string `json:"board_id"`
}

type ListBoardsRequest struct{}

type ListBoardsResponse struct {
	Saved []board.Summary `json:"saved"`
	Live  []board.Summary `json:"live"`
}

type DeleteBoardRequest struct {
	BoardID string `json:"board_id"`
}

type DeleteBoardResponse struct{}

type ListGalleryRequest struct{}

type ListGalleryResponse struct {
	Items []galleryrepo.Item `json:"items"`
}
