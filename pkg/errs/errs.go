package errs

import "errors"

// Failure taxonomy shared by the extraction, lookup and template stages.
// Callers wrap these with fmt.Errorf("...: %w") and match with errors.Is.
var (
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrCorruptDocument       = errors.New("corrupt document")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrNetworkFailure        = errors.New("network failure")
	ErrTransientExtraction   = errors.New("transient extraction failure")
)

// UserMessage converts a top-level failure into the reply the chat user sees.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCapabilityUnavailable):
		return "Sorry, photo text recognition is not available on this server. Please send a PDF or paste the text instead."
	case errors.Is(err, ErrTemplateNotFound):
		return "The lesson plan template could not be found. Upload a .docx template or ask the admin to configure one."
	case errors.Is(err, ErrCorruptDocument):
		return "That file could not be read. Please check it is a valid PDF (or .docx template) and try again."
	case errors.Is(err, ErrNetworkFailure):
		return "A network problem stopped me from finishing. Please try again in a moment."
	default:
		return "Something went wrong while building your lesson plan. Please try again."
	}
}
