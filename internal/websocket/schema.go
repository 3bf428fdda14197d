package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError         Event = "error"
	EventPong          Event = "pong"
	EventSnapshot      Event = "snapshot"
	EventStarted       Event = "started"
	EventPointersReady Event = "pointers_ready"
	EventAnswerReady   Event = "answer_ready"
	EventCompleted     Event = "completed"
	EventFailed        Event = "failed"
)

// GenerationEvent reports progress of an essay generation run. It is published
// on the application's Redis channel and forwarded verbatim to WebSocket clients.
type GenerationEvent struct {
	Event         Event  `json:"event"`
	ApplicationID string `json:"application_id"`
	QuestionID    string `json:"question_id,omitempty"`
	Completed     int    `json:"completed"`
	Total         int    `json:"total"`
	Message       string `json:"message,omitempty"`
}

// SnapshotResponse is sent right after connecting so late subscribers know
// whether a run is in progress.
type SnapshotResponse struct {
	Event        Event `json:"event"`
	IsGenerating bool  `json:"is_generating"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
