package state

import (
	"testing"

	"lessonplan-bot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overridePath(chatID string) string { return "/tmp/templates/" + chatID + ".docx" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fileID   string
		fileName string
		photo    bool
		want     EventKind
	}{
		{name: "start", text: "/start", want: EventStart},
		{name: "start with bot mention", text: "/start@LessonBot", want: EventStart},
		{name: "cancel command", text: "/cancel", want: EventCancel},
		{name: "cancel button", text: "cancel", want: EventCancel},
		{name: "plain text", text: "Grade 6", want: EventText},
		{name: "pdf", fileID: "f1", fileName: "Chapter.PDF", want: EventDocumentUpload},
		{name: "template", fileID: "f2", fileName: "plan.docx", want: EventTemplateUpload},
		{name: "other document", fileID: "f3", fileName: "notes.txt", want: EventUnsupportedDocument},
		{name: "photo", fileID: "p1", photo: true, want: EventPhoto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Classify(tt.text, tt.fileID, tt.fileName, tt.photo)
			assert.Equal(t, tt.want, ev.Kind)
		})
	}
}

func TestNext_FindLessonFunnel(t *testing.T) {
	session := store.NewSession("42")
	steps := []struct {
		text      string
		wantState store.State
		wantKind  ActionKind
	}{
		{text: "/start", wantState: store.StateIdle, wantKind: ActionShowMenu},
		{text: ButtonFindLesson, wantState: store.StateAwaitGrade, wantKind: ActionAskGrade},
		{text: "Grade 6", wantState: store.StateAwaitSubject, wantKind: ActionAskSubject},
		{text: "Math", wantState: store.StateAwaitChapter, wantKind: ActionAskChapter},
		{text: "Fractions", wantState: store.StateIdle, wantKind: ActionLessonFromSearch},
	}

	var last Action
	pipelineRuns := 0
	for _, step := range steps {
		next, action := Next(session, Classify(step.text, "", "", false), overridePath)
		require.NoError(t, next.Validate())
		assert.Equal(t, step.wantState, next.State, "after %q", step.text)
		assert.Equal(t, step.wantKind, action.Kind, "after %q", step.text)
		if action.RunsPipeline() {
			pipelineRuns++
		}
		session, last = next, action
	}

	assert.Equal(t, 1, pipelineRuns)
	assert.Contains(t, last.Query.String(), "Grade 6 Math Fractions")
	assert.Nil(t, session.Pending)
}

func TestNext_DoesNotMutateInput(t *testing.T) {
	current := &store.Session{ChatID: "1", State: store.StateAwaitSubject, Pending: &store.LessonQuery{Grade: "5"}}

	next, _ := Next(current, Event{Kind: EventText, Text: "Science"}, overridePath)

	assert.Equal(t, store.StateAwaitSubject, current.State)
	assert.Equal(t, "", current.Pending.Subject)
	assert.Equal(t, "Science", next.Pending.Subject)
	assert.Equal(t, "5", next.Pending.Grade)
}

func TestNext_PasteText(t *testing.T) {
	session := store.NewSession("7")

	session, action := Next(session, Event{Kind: EventText, Text: ButtonPasteText}, overridePath)
	assert.Equal(t, store.StateAwaitText, session.State)
	assert.Equal(t, ActionAskText, action.Kind)

	session, action = Next(session, Event{Kind: EventText, Text: "Plants need light to grow."}, overridePath)
	assert.Equal(t, store.StateIdle, session.State)
	assert.Equal(t, ActionLessonFromText, action.Kind)
	assert.Equal(t, "Plants need light to grow.", action.Text)
}

func TestNext_IdleTextPromptsStart(t *testing.T) {
	session := store.NewSession("9")

	next, action := Next(session, Event{Kind: EventText, Text: "hello"}, overridePath)

	assert.Equal(t, store.StateIdle, next.State)
	assert.Equal(t, ActionPromptStart, action.Kind)
}

func TestNext_FileEvents(t *testing.T) {
	collecting := &store.Session{ChatID: "3", State: store.StateAwaitSubject, Pending: &store.LessonQuery{Grade: "4"}}

	t.Run("template keeps state", func(t *testing.T) {
		next, action := Next(collecting, Event{Kind: EventTemplateUpload, FileID: "t", FileName: "mine.docx"}, overridePath)
		assert.Equal(t, store.StateAwaitSubject, next.State)
		assert.Equal(t, "/tmp/templates/3.docx", next.TemplatePath)
		assert.Equal(t, ActionStoreTemplate, action.Kind)
		assert.NoError(t, next.Validate())
	})

	t.Run("pdf resets to idle", func(t *testing.T) {
		next, action := Next(collecting, Event{Kind: EventDocumentUpload, FileID: "d", FileName: "c.pdf"}, overridePath)
		assert.Equal(t, store.StateIdle, next.State)
		assert.Nil(t, next.Pending)
		assert.Equal(t, ActionLessonFromPDF, action.Kind)
	})

	t.Run("photo resets to idle", func(t *testing.T) {
		next, action := Next(collecting, Event{Kind: EventPhoto, FileID: "p"}, overridePath)
		assert.Equal(t, store.StateIdle, next.State)
		assert.Equal(t, ActionLessonFromPhoto, action.Kind)
	})

	t.Run("unsupported keeps state", func(t *testing.T) {
		next, action := Next(collecting, Event{Kind: EventUnsupportedDocument, FileName: "x.txt"}, overridePath)
		assert.Equal(t, store.StateAwaitSubject, next.State)
		assert.Equal(t, ActionUnsupportedFile, action.Kind)
	})
}

func TestNext_CancelClearsPending(t *testing.T) {
	collecting := &store.Session{ChatID: "3", State: store.StateAwaitChapter, Pending: &store.LessonQuery{Grade: "4", Subject: "Art"}}

	next, action := Next(collecting, Event{Kind: EventCancel}, overridePath)

	assert.Equal(t, store.StateIdle, next.State)
	assert.Nil(t, next.Pending)
	assert.Equal(t, ActionCancelled, action.Kind)
}
