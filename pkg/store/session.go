package store

import "fmt"

// State is the position of a chat in the conversation funnel.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitText    State = "await_text"
	StateAwaitGrade   State = "await_grade"
	StateAwaitSubject State = "await_subject"
	StateAwaitChapter State = "await_chapter"
)

// Collecting reports whether the state belongs to the grade → subject → chapter sub-flow.
func (s State) Collecting() bool {
	return s == StateAwaitGrade || s == StateAwaitSubject || s == StateAwaitChapter
}

// LessonQuery holds the answers gathered by the "find lesson" sub-flow.
type LessonQuery struct {
	Grade   string `json:"grade,omitempty"`
	Subject string `json:"subject,omitempty"`
	Chapter string `json:"chapter,omitempty"`
}

// String renders the search query, e.g. "Grade 6 Math Fractions".
func (q LessonQuery) String() string {
	return fmt.Sprintf("%s %s %s", q.Grade, q.Subject, q.Chapter)
}

// Session represents the conversation state of one chat, held only for the life of the process
// (or the configured cache).
type Session struct {
	ChatID string `json:"chat_id"`
	State  State  `json:"state"`

	// Per-chat template override, set by uploading a .docx.
	TemplatePath string `json:"template_path,omitempty"`

	// Pending is non-nil only while State.Collecting() is true.
	Pending *LessonQuery `json:"pending,omitempty"`

	// Version increases on every committed write and drives compare-and-swap.
	Version uint64 `json:"version"`
}

// NewSession creates the idle session for a chat seen for the first time.
func NewSession(chatID string) *Session {
	return &Session{ChatID: chatID, State: StateIdle}
}

// Clone returns a deep copy so a transition never mutates a stored value.
func (s *Session) Clone() *Session {
	c := *s
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return &c
}

// Validate checks that pending answers only exist while collecting.
func (s *Session) Validate() error {
	if s.State.Collecting() && s.Pending == nil {
		return fmt.Errorf("session %s: state %s without pending fields", s.ChatID, s.State)
	}
	if !s.State.Collecting() && s.Pending != nil {
		return fmt.Errorf("session %s: pending fields leaked into state %s", s.ChatID, s.State)
	}
	return nil
}

// LessonPlanFields are the values substituted into the template placeholders.
type LessonPlanFields struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Objectives string `json:"objectives"`
	Activities string `json:"activities"`
	Assessment string `json:"assessment"`
	References string `json:"references"`
}

// SearchHit is a single web search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
