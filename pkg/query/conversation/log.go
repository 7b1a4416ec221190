package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Classification tags an assistant turn with which backend answered it.
type Classification string

const (
	ClassDocument  Classification = "DOCUMENT"
	ClassDatabase  Classification = "DATABASE"
	ClassMixed     Classification = "MIXED"
	ClassLLMAnswer Classification = "LLM_ANSWER"
	ClassUnknown   Classification = "UNKNOWN"
)

// Attachments carries the structured extras a backend may return alongside
// the answer text. All slices may be empty; they are normalized to non-nil
// at the response boundary so consumers never branch on presence.
type Attachments struct {
	Images       []string                 `json:"images,omitempty"`
	Tables       []string                 `json:"tables,omitempty"`
	SourceChunks []string                 `json:"source_chunks,omitempty"`
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	RowCount     int                      `json:"row_count,omitempty"`
	QueryText    string                   `json:"query_text,omitempty"`
	ElapsedTime  string                   `json:"elapsed_time,omitempty"`
}

// Turn is one entry of the conversation log. Turns are immutable once
// appended; InReplyTo ties an assistant turn to the user turn that caused
// it, and Seq is the dispatch start order of that request.
type Turn struct {
	Id             uuid.UUID
	Seq            uint64
	Role           Role
	Text           string
	CreatedAt      time.Time
	Classification Classification
	Attachments    *Attachments
	InReplyTo      uuid.UUID
}

// Log is the append-only conversation history. It is the sole owner of its
// turns: appended turns are copied in and read out by value, and nothing
// short of Reset removes them.
type Log struct {
	mu    sync.Mutex
	turns []Turn
}

func NewLog() *Log {
	return &Log{}
}

// Append adds a turn to the end of the log and returns the stored copy.
func (l *Log) Append(turn Turn) Turn {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	if turn.Attachments != nil {
		attachments := *turn.Attachments
		turn.Attachments = &attachments
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a snapshot of the log in append order.
func (l *Log) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]Turn, len(l.turns))
	copy(snapshot, l.turns)
	return snapshot
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Reset drops the whole history. This is the only way turns ever disappear.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}
