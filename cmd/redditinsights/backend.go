package main

import (
	"context"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"redditinsights/activity"
	"redditinsights/common"
	"redditinsights/config"
	"redditinsights/orchestrator"
	"redditinsights/reddit"
	"redditinsights/storage"
)

// backend bundles the collector and its optional sinks
type backend struct {
	orchestrator *orchestrator.Orchestrator
	store        *storage.RedisStore
	closers      []io.Closer
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

// newBackend wires the collect cycle for script. Redis, S3 and Kafka are optional;
// any that are unconfigured or unreachable are skipped with a warning.
func newBackend(ctx context.Context, c config.Config, script string, logger *logrus.Logger) *backend {
	b := &backend{}

	var publisher activity.Publisher
	if len(c.Kafka.Brokers) > 0 {
		kp, err := activity.NewKafkaPublisher(c.Kafka.Brokers, c.Kafka.Topic)
		if err != nil {
			logger.WithError(err).Warn("Kafka unavailable, activity stays local")
		} else {
			publisher = kp
			b.closers = append(b.closers, kp)
		}
	}
	recorder := activity.NewLog(c.Collector.ActivityLog, script, publisher, logger)

	var opts []orchestrator.Option
	if c.Redis.Addr != "" {
		store, err := storage.NewRedisStore(c.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, serving the snapshot file")
		} else {
			b.store = store
			b.closers = append(b.closers, store)
			opts = append(opts, orchestrator.WithStore(store))
		}
	}

	uploader, err := common.NewS3(ctx, c.S3)
	if err != nil {
		logger.WithError(err).Warn("S3 unavailable, snapshots stay local")
	} else if uploader != nil {
		opts = append(opts, orchestrator.WithUploader(uploader))
	}

	fetcher := reddit.NewClient(&http.Client{}, c.Collector.RateLimitWait)
	b.orchestrator = orchestrator.New(c.Collector, fetcher, recorder, logger, opts...)
	return b
}
