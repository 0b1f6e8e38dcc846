package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lessonplan-bot-be/internal/constant"
	"lessonplan-bot-be/internal/dto"
	"lessonplan-bot-be/internal/pkg/logger"
	"lessonplan-bot-be/internal/repository/contract"
	"lessonplan-bot-be/pkg/errs"
	"lessonplan-bot-be/pkg/events"
	"lessonplan-bot-be/pkg/messenger"
	pktNats "lessonplan-bot-be/pkg/nats"
	"lessonplan-bot-be/pkg/pipeline"
	"lessonplan-bot-be/pkg/search"
	"lessonplan-bot-be/pkg/state"
	"lessonplan-bot-be/pkg/store"
	"lessonplan-bot-be/pkg/template"
)

// maxCommitAttempts bounds the compare-and-swap loop for one update.
const maxCommitAttempts = 5

type IBotService interface {
	HandleUpdate(ctx context.Context, update *dto.Update) error
}

// SourceExtractor is the part of the extractor the bot drives.
type SourceExtractor interface {
	PDF(data []byte) (string, error)
	Image(ctx context.Context, data []byte) (string, error)
	Text(raw string) string
}

// WebLookup gathers source text for a search query.
type WebLookup interface {
	Gather(ctx context.Context, query string, n int) search.Outcome
}

// LessonPipeline builds and renders a lesson plan.
type LessonPipeline interface {
	Build(ctx context.Context, src pipeline.Source) store.LessonPlanFields
	Render(ctx context.Context, fields store.LessonPlanFields, templatePath string) ([]byte, error)
}

type BotOptions struct {
	DefaultTemplatePath string
	TemplateDir         string
	SearchResults       int
}

type botService struct {
	sessions  contract.SessionRepository
	messenger messenger.Messenger
	extractor SourceExtractor
	lookup    WebLookup
	pipeline  LessonPipeline
	events    pktNats.EventPublisher
	logger    logger.ILogger
	opts      BotOptions
	now       func() time.Time
}

func NewBotService(
	sessions contract.SessionRepository,
	msgr messenger.Messenger,
	extractor SourceExtractor,
	lookup WebLookup,
	lessons LessonPipeline,
	eventPublisher pktNats.EventPublisher,
	log logger.ILogger,
	opts BotOptions,
) IBotService {
	if opts.SearchResults <= 0 {
		opts.SearchResults = 3
	}
	if eventPublisher == nil {
		eventPublisher = pktNats.NopPublisher{}
	}
	return &botService{
		sessions:  sessions,
		messenger: msgr,
		extractor: extractor,
		lookup:    lookup,
		pipeline:  lessons,
		events:    eventPublisher,
		logger:    log,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *botService) HandleUpdate(ctx context.Context, update *dto.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}
	msg := update.Message
	chatID := strconv.FormatInt(msg.Chat.Id, 10)
	ev := classify(msg)

	session, action, err := s.transition(ctx, chatID, ev)
	if err != nil {
		s.logger.Error(constant.LogModuleBot, "Failed to commit session transition", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		s.reply(ctx, chatID, errs.UserMessage(err), nil)
		return err
	}

	s.logger.Debug(constant.LogModuleBot, "Transition committed", map[string]interface{}{
		"chat_id": chatID,
		"state":   string(session.State),
		"version": session.Version,
	})

	return s.perform(ctx, session, action)
}

func classify(msg *dto.Message) state.Event {
	switch {
	case msg.Document != nil:
		return state.Classify("", msg.Document.FileId, msg.Document.FileName, false)
	case len(msg.Photo) > 0:
		return state.Classify("", msg.LargestPhoto(), "", true)
	}
	return state.Classify(msg.Text, "", "", false)
}

// transition computes and stores the next session. A lost race recomputes from
// the fresh session so two deliveries of the same chat never overwrite each other.
func (s *botService) transition(ctx context.Context, chatID string, ev state.Event) (*store.Session, state.Action, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		current, found, err := s.sessions.Get(ctx, chatID)
		if err != nil {
			return nil, state.Action{}, fmt.Errorf("loading session: %w", err)
		}
		if !found {
			current = store.NewSession(chatID)
		}

		next, action := state.Next(current, ev, s.templatePath)
		err = s.sessions.CompareAndSwap(ctx, next, current.Version)
		if errors.Is(err, contract.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, state.Action{}, fmt.Errorf("storing session: %w", err)
		}
		return next, action, nil
	}
	return nil, state.Action{}, fmt.Errorf("session %s: %w after %d attempts", chatID, contract.ErrVersionConflict, maxCommitAttempts)
}

func (s *botService) templatePath(chatID string) string {
	return filepath.Join(s.opts.TemplateDir, chatID+".docx")
}

func (s *botService) perform(ctx context.Context, session *store.Session, action state.Action) error {
	chatID := session.ChatID

	switch action.Kind {
	case state.ActionShowMenu:
		return s.reply(ctx, chatID, constant.MessageWelcome, &messenger.Keyboard{Rows: constant.MenuRows})
	case state.ActionPromptStart:
		return s.reply(ctx, chatID, constant.MessagePromptStart, nil)
	case state.ActionCancelled:
		return s.reply(ctx, chatID, constant.MessageCancelled, nil)
	case state.ActionAskText:
		return s.reply(ctx, chatID, constant.MessageAskText, nil)
	case state.ActionAskGrade:
		return s.reply(ctx, chatID, constant.MessageAskGrade, nil)
	case state.ActionAskSubject:
		return s.reply(ctx, chatID, constant.MessageAskSubject, nil)
	case state.ActionAskChapter:
		return s.reply(ctx, chatID, constant.MessageAskChapter, nil)
	case state.ActionUnsupportedFile:
		return s.reply(ctx, chatID, constant.MessageUnsupported, nil)
	case state.ActionStoreTemplate:
		return s.storeTemplate(ctx, session, action)
	}

	if !action.RunsPipeline() {
		return nil
	}

	src, err := s.source(ctx, chatID, action)
	if err != nil {
		s.fail(ctx, chatID, sourceKind(action), err)
		return nil
	}
	return s.deliver(ctx, session, src)
}

func sourceKind(action state.Action) pipeline.SourceKind {
	switch action.Kind {
	case state.ActionLessonFromPDF:
		return pipeline.SourcePDF
	case state.ActionLessonFromPhoto:
		return pipeline.SourcePhoto
	case state.ActionLessonFromSearch:
		return pipeline.SourceSearch
	}
	return pipeline.SourceText
}

// source runs the extraction path for a pipeline action.
func (s *botService) source(ctx context.Context, chatID string, action state.Action) (pipeline.Source, error) {
	src := pipeline.Source{Kind: sourceKind(action)}

	switch action.Kind {
	case state.ActionLessonFromText:
		src.Text = s.extractor.Text(action.Text)

	case state.ActionLessonFromPDF:
		s.reply(ctx, chatID, constant.MessageWorking, nil)
		data, err := s.messenger.Download(ctx, action.FileID)
		if err != nil {
			return src, err
		}
		text, err := s.extractor.PDF(data)
		if err != nil {
			return src, err
		}
		src.Text = text

	case state.ActionLessonFromPhoto:
		s.reply(ctx, chatID, constant.MessageWorking, nil)
		data, err := s.messenger.Download(ctx, action.FileID)
		if err != nil {
			return src, err
		}
		text, err := s.extractor.Image(ctx, data)
		if err != nil {
			return src, err
		}
		src.Text = text

	case state.ActionLessonFromSearch:
		query := search.BuildQuery(action.Query)
		s.reply(ctx, chatID, fmt.Sprintf(constant.MessageSearching, action.Query.String()), nil)

		outcome := s.lookup.Gather(ctx, query, s.opts.SearchResults)
		if outcome.Err != nil {
			s.logger.Warn(constant.LogModuleBot, "Web search failed", map[string]interface{}{
				"chat_id": chatID,
				"query":   query,
				"error":   outcome.Err.Error(),
			})
		}
		s.logger.Info(constant.LogModuleBot, "Web lookup finished", map[string]interface{}{
			"chat_id": chatID,
			"query":   query,
			"hits":    len(outcome.Hits),
			"skipped": outcome.Skipped,
		})

		src.Title = action.Query.Chapter
		if outcome.Empty() {
			s.reply(ctx, chatID, constant.MessageNothingFound, nil)
			src.Text = action.Query.Chapter
		} else {
			src.Text = outcome.Text
			src.References = outcome.References
		}
		return src, nil
	}

	if strings.TrimSpace(src.Text) == "" {
		s.reply(ctx, chatID, constant.MessageEmptySource, nil)
	}
	return src, nil
}

// deliver builds, renders and sends the lesson plan.
func (s *botService) deliver(ctx context.Context, session *store.Session, src pipeline.Source) error {
	chatID := session.ChatID
	fields := s.pipeline.Build(ctx, src)

	templatePath := template.Resolve(session.TemplatePath, s.opts.DefaultTemplatePath)
	doc, err := s.pipeline.Render(ctx, fields, templatePath)
	if err != nil {
		s.fail(ctx, chatID, src.Kind, err)
		return nil
	}

	if err := s.messenger.SendDocument(ctx, chatID, constant.LessonPlanFileName, doc, constant.LessonPlanCaption); err != nil {
		s.fail(ctx, chatID, src.Kind, err)
		return nil
	}

	s.logger.Info(constant.LogModuleBot, "Lesson plan delivered", map[string]interface{}{
		"chat_id":  chatID,
		"source":   string(src.Kind),
		"title":    fields.Title,
		"template": templatePath,
		"bytes":    len(doc),
	})
	s.publish(ctx, events.LessonPlanGenerated(chatID, string(src.Kind), fields.Title, s.now()))
	return nil
}

// storeTemplate downloads the uploaded .docx into the chat's override path.
// The override was committed with the transition. A failed upload writes
// nothing, so it is cleared only when no earlier template sits at that path.
func (s *botService) storeTemplate(ctx context.Context, session *store.Session, action state.Action) error {
	chatID := session.ChatID

	err := s.saveTemplate(ctx, action.FileID, session.TemplatePath)
	if err == nil {
		s.logger.Info(constant.LogModuleBot, "Template override stored", map[string]interface{}{
			"chat_id": chatID,
			"file":    action.FileName,
			"path":    session.TemplatePath,
		})
		return s.reply(ctx, chatID, constant.MessageTemplateSet, nil)
	}

	s.logger.Warn(constant.LogModuleBot, "Template upload rejected", map[string]interface{}{
		"chat_id": chatID,
		"file":    action.FileName,
		"error":   err.Error(),
	})
	if _, statErr := os.Stat(session.TemplatePath); statErr == nil {
		s.logger.Info(constant.LogModuleBot, "Keeping previous template override", map[string]interface{}{
			"chat_id": chatID,
			"path":    session.TemplatePath,
		})
	} else if clearErr := s.clearTemplate(ctx, chatID, session.TemplatePath); clearErr != nil {
		s.logger.Error(constant.LogModuleBot, "Failed to clear template override", map[string]interface{}{
			"chat_id": chatID,
			"error":   clearErr.Error(),
		})
	}
	return s.reply(ctx, chatID, errs.UserMessage(err), nil)
}

func (s *botService) saveTemplate(ctx context.Context, fileID, path string) error {
	data, err := s.messenger.Download(ctx, fileID)
	if err != nil {
		return err
	}
	if _, err := template.Check(data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating template dir: %w", err)
	}
	// Write then rename so a concurrent render never reads a half-written file.
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storing template: %w", err)
	}
	return nil
}

func (s *botService) clearTemplate(ctx context.Context, chatID, path string) error {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		current, found, err := s.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}
		if !found || current.TemplatePath != path {
			return nil
		}
		next := current.Clone()
		next.TemplatePath = ""
		err = s.sessions.CompareAndSwap(ctx, next, current.Version)
		if errors.Is(err, contract.ErrVersionConflict) {
			continue
		}
		return err
	}
	return contract.ErrVersionConflict
}

// fail reports a top-level pipeline failure to the user. The session is already idle.
func (s *botService) fail(ctx context.Context, chatID string, kind pipeline.SourceKind, err error) {
	s.logger.Error(constant.LogModuleBot, "Lesson plan failed", map[string]interface{}{
		"chat_id": chatID,
		"source":  string(kind),
		"error":   err.Error(),
	})
	s.reply(ctx, chatID, errs.UserMessage(err), nil)
	s.publish(ctx, events.LessonPlanFailed(chatID, string(kind), err.Error(), s.now()))
}

func (s *botService) reply(ctx context.Context, chatID, text string, keyboard *messenger.Keyboard) error {
	if err := s.messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		s.logger.Error(constant.LogModuleBot, "Failed to send message", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func (s *botService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn(constant.LogModuleBot, "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
