package constant

import "lessonplan-bot-be/pkg/state"

const (
	LogModuleBot      = "BOT"
	LogModuleConsumer = "CONSUMER"
	LogModuleWebhook  = "WEBHOOK"

	// FileName of the delivered lesson plan document.
	LessonPlanFileName = "lesson_plan.docx"
	LessonPlanCaption  = "Here is your lesson plan."
)

// MenuRows is the reply keyboard shown on /start.
var MenuRows = [][]string{
	{state.ButtonPasteText},
	{state.ButtonFindLesson},
	{state.ButtonCancel},
}

const (
	MessageWelcome = "Welcome! Send me a PDF chapter or a photo of a page, paste some text, or ask me to find a lesson.\n" +
		"You can also upload your own .docx template with {{ChapterTitle}}, {{Summary}}, {{LearningObjectives}}, {{Activities}}, {{Assessment}} and {{References}} placeholders."
	MessagePromptStart  = "Send /start to see what I can do."
	MessageCancelled    = "Okay, cancelled. Send /start when you want to begin again."
	MessageAskText      = "Paste the text you want to turn into a lesson plan."
	MessageAskGrade     = "Which grade is this lesson for? (for example: Grade 6)"
	MessageAskSubject   = "Which subject?"
	MessageAskChapter   = "Which chapter or topic?"
	MessageTemplateSet  = "Template saved. Your next lesson plans will use it."
	MessageUnsupported  = "I can only read PDF documents and .docx templates. Please send a PDF, a photo or plain text."
	MessageWorking      = "Working on your lesson plan..."
	MessageSearching    = "Searching the web for %s..."
	MessageNothingFound = "I couldn't find anything online for that, so this plan is built from your answers only."
	MessageEmptySource  = "I couldn't read any text from that, so the lesson plan only has placeholder content."
)
