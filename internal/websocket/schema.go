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
	EventTick    Event = "tick"
	EventExpired Event = "expired"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// TickResponse carries one advisory countdown tick for the attempt in
// progress.
type TickResponse struct {
	Event            Event  `json:"event"`
	ExamID           string `json:"exam_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// ExpiredResponse signals that the advisory time budget has run out.
// The attempt stays open; submission is still accepted.
type ExpiredResponse struct {
	Event  Event  `json:"event"`
	ExamID string `json:"exam_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
