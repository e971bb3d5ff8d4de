package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

const (
	// kafkaTimeout bounds each network step of a publish
	kafkaTimeout = 2 * time.Second
	// kafkaCooldown is how long publishing is skipped after a failed send
	kafkaCooldown = 30 * time.Second
)

// ErrPublisherPaused is returned while the publisher is cooling down after a failed send
var ErrPublisherPaused = errors.New("kafka publisher paused after a failed send")

// KafkaPublisher sends activity entries to a Kafka topic, keyed by script.
// After a failed send it skips publishing for a cooldown so a dead broker
// cannot stall the work that records activity.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time

	mu          sync.Mutex
	pausedUntil time.Time
}

// newProducerConfig keeps a send to an unreachable broker short
func newProducerConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Timeout = kafkaTimeout
	saramaConfig.Producer.Retry.Max = 1
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Metadata.Retry.Max = 1
	saramaConfig.Metadata.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Net.DialTimeout = kafkaTimeout
	saramaConfig.Net.ReadTimeout = kafkaTimeout
	saramaConfig.Net.WriteTimeout = kafkaTimeout
	return saramaConfig
}

// NewKafkaPublisher connects a synchronous producer to the brokers
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, newProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, now: time.Now}
}

// Publish implements Publisher
func (k *KafkaPublisher) Publish(entry Entry) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.now().Before(k.pausedUntil) {
		return ErrPublisherPaused
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(entry.Script),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		k.pausedUntil = k.now().Add(kafkaCooldown)
		return err
	}
	return nil
}

// Close shuts the producer down
func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
