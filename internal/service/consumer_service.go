package service

import (
	"context"
	"encoding/json"
	"sync"

	"lessonplan-bot-be/internal/constant"
	"lessonplan-bot-be/internal/dto"
	"lessonplan-bot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until every update taken off the topic has been handled.
	Wait()
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	bot        IBotService
	logger     logger.ILogger
	inflight   sync.WaitGroup
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	bot IBotService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		bot:        bot,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			// gochannel holds back the next message until this one is acked, and
			// updates are never redelivered, so ack before handling. Register the
			// update first so Wait covers everything the publisher saw acked.
			cs.inflight.Add(1)
			msg.Ack()
			go func(msg *message.Message) {
				defer cs.inflight.Done()
				cs.processMessage(ctx, msg)
			}(msg)
		}
	}()

	return nil
}

func (cs *consumerService) Wait() {
	cs.inflight.Wait()
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error(constant.LogModuleConsumer, "Panic while handling update", map[string]interface{}{
				"message_id": msg.UUID,
				"panic":      r,
			})
		}
	}()

	var update dto.Update
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		cs.logger.Warn(constant.LogModuleConsumer, "Failed to unmarshal update", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if err := cs.bot.HandleUpdate(ctx, &update); err != nil {
		cs.logger.Error(constant.LogModuleConsumer, "Update handling failed", map[string]interface{}{
			"message_id": msg.UUID,
			"update_id":  update.UpdateId,
			"error":      err.Error(),
		})
	}
}
