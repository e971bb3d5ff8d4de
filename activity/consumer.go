package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// EntryFunc receives one consumed entry
type EntryFunc func(Entry)

// Follower tails the activity topic through a consumer group
type Follower struct {
	group  sarama.ConsumerGroup
	topic  string
	filter entryFilter
	handle EntryFunc
	log    *logrus.Logger
}

type entryFilter struct {
	level  string
	script string
}

func (f entryFilter) match(e Entry) bool {
	if f.level != "" && e.Level != f.level {
		return false
	}
	return f.script == "" || e.Script == f.script
}

// NewFollower joins groupID on the brokers. Only entries matching level and script
// (empty matches all) are passed to handle.
func NewFollower(brokers []string, topic, groupID, level, script string, handle EntryFunc, logger *logrus.Logger) (*Follower, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating kafka consumer group: %w", err)
	}

	return &Follower{
		group:  group,
		topic:  topic,
		filter: entryFilter{level: level, script: script},
		handle: handle,
		log:    logger,
	}, nil
}

// Run consumes until ctx is cancelled
func (f *Follower) Run(ctx context.Context) error {
	go func() {
		for err := range f.group.Errors() {
			f.log.WithError(err).Warn("Kafka consumer error")
		}
	}()

	for {
		if err := f.group.Consume(ctx, []string{f.topic}, f); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			f.log.WithError(err).Error("Error from Kafka consumer")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close leaves the group
func (f *Follower) Close() error {
	return f.group.Close()
}

// Setup implements sarama.ConsumerGroupHandler
func (f *Follower) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler
func (f *Follower) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler
func (f *Follower) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			f.handleMessage(message.Value)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// handleMessage decodes one message. Malformed payloads are skipped.
func (f *Follower) handleMessage(value []byte) {
	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		f.log.WithError(err).Debug("Skipping malformed activity message")
		return
	}
	if f.filter.match(entry) {
		f.handle(entry)
	}
}
