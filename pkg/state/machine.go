package state

import (
	"path/filepath"
	"strings"

	"lessonplan-bot-be/pkg/store"
)

// Menu labels and commands recognised in text messages.
const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"

	ButtonPasteText  = "Paste Text"
	ButtonFindLesson = "Ask Bot to Find Lesson"
	ButtonCancel     = "Cancel"
)

// EventKind classifies an inbound update.
type EventKind int

const (
	EventText EventKind = iota
	EventStart
	EventCancel
	EventTemplateUpload
	EventDocumentUpload
	EventUnsupportedDocument
	EventPhoto
)

// Event is a classified inbound update for one chat.
type Event struct {
	Kind     EventKind
	Text     string
	FileID   string
	FileName string
}

// ActionKind is the side effect the bot performs after a transition is committed.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionShowMenu
	ActionPromptStart
	ActionCancelled
	ActionAskText
	ActionAskGrade
	ActionAskSubject
	ActionAskChapter
	ActionStoreTemplate
	ActionUnsupportedFile
	ActionLessonFromPDF
	ActionLessonFromPhoto
	ActionLessonFromText
	ActionLessonFromSearch
)

// Action carries what the bot needs to perform an ActionKind.
type Action struct {
	Kind     ActionKind
	Text     string
	FileID   string
	FileName string
	Query    store.LessonQuery
}

// RunsPipeline reports whether the action ends in a delivered lesson plan.
func (a Action) RunsPipeline() bool {
	switch a.Kind {
	case ActionLessonFromPDF, ActionLessonFromPhoto, ActionLessonFromText, ActionLessonFromSearch:
		return true
	}
	return false
}

var (
	templateExtensions = map[string]bool{".docx": true}
	documentExtensions = map[string]bool{".pdf": true}
)

// Classify maps the raw pieces of an update onto an Event.
func Classify(text, fileID, fileName string, photo bool) Event {
	switch {
	case fileID != "" && photo:
		return Event{Kind: EventPhoto, FileID: fileID}
	case fileID != "":
		ext := strings.ToLower(filepath.Ext(fileName))
		kind := EventUnsupportedDocument
		if templateExtensions[ext] {
			kind = EventTemplateUpload
		} else if documentExtensions[ext] {
			kind = EventDocumentUpload
		}
		return Event{Kind: kind, FileID: fileID, FileName: fileName}
	}

	trimmed := strings.TrimSpace(text)
	command := strings.ToLower(strings.SplitN(trimmed, "@", 2)[0])
	switch {
	case command == CommandStart:
		return Event{Kind: EventStart, Text: trimmed}
	case command == CommandCancel, strings.EqualFold(trimmed, ButtonCancel):
		return Event{Kind: EventCancel, Text: trimmed}
	}
	return Event{Kind: EventText, Text: trimmed}
}

// Next computes the session that follows ev and the action to run once it is stored.
// The input session is never modified. Pending answers are set and cleared together
// with the state so an abandoned flow cannot leak into another one.
func Next(current *store.Session, ev Event, templatePath func(chatID string) string) (*store.Session, Action) {
	next := current.Clone()

	switch ev.Kind {
	case EventStart:
		toIdle(next)
		return next, Action{Kind: ActionShowMenu}

	case EventCancel:
		toIdle(next)
		return next, Action{Kind: ActionCancelled}

	case EventTemplateUpload:
		next.TemplatePath = templatePath(current.ChatID)
		return next, Action{Kind: ActionStoreTemplate, FileID: ev.FileID, FileName: ev.FileName}

	case EventUnsupportedDocument:
		return next, Action{Kind: ActionUnsupportedFile, FileName: ev.FileName}

	case EventDocumentUpload:
		toIdle(next)
		return next, Action{Kind: ActionLessonFromPDF, FileID: ev.FileID, FileName: ev.FileName}

	case EventPhoto:
		toIdle(next)
		return next, Action{Kind: ActionLessonFromPhoto, FileID: ev.FileID}
	}

	// Menu buttons start a flow from any state.
	switch ev.Text {
	case ButtonPasteText:
		next.State = store.StateAwaitText
		next.Pending = nil
		return next, Action{Kind: ActionAskText}
	case ButtonFindLesson:
		next.State = store.StateAwaitGrade
		next.Pending = &store.LessonQuery{}
		return next, Action{Kind: ActionAskGrade}
	}

	switch current.State {
	case store.StateAwaitText:
		if ev.Text == "" {
			return next, Action{Kind: ActionAskText}
		}
		toIdle(next)
		return next, Action{Kind: ActionLessonFromText, Text: ev.Text}

	case store.StateAwaitGrade:
		if ev.Text == "" {
			return next, Action{Kind: ActionAskGrade}
		}
		next.State = store.StateAwaitSubject
		next.Pending = &store.LessonQuery{Grade: ev.Text}
		return next, Action{Kind: ActionAskSubject}

	case store.StateAwaitSubject:
		if ev.Text == "" {
			return next, Action{Kind: ActionAskSubject}
		}
		next.State = store.StateAwaitChapter
		next.Pending = &store.LessonQuery{Grade: pendingOf(current).Grade, Subject: ev.Text}
		return next, Action{Kind: ActionAskChapter}

	case store.StateAwaitChapter:
		if ev.Text == "" {
			return next, Action{Kind: ActionAskChapter}
		}
		query := pendingOf(current)
		query.Chapter = ev.Text
		toIdle(next)
		return next, Action{Kind: ActionLessonFromSearch, Query: query}
	}

	return next, Action{Kind: ActionPromptStart}
}

func toIdle(s *store.Session) {
	s.State = store.StateIdle
	s.Pending = nil
}

func pendingOf(s *store.Session) store.LessonQuery {
	if s.Pending == nil {
		return store.LessonQuery{}
	}
	return *s.Pending
}
