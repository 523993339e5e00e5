// Package telemetry records per-question answer outcomes. Every sink is
// fire-and-forget: failures are logged and must never affect the answer
// response that triggered them.
package telemetry

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// LogSink writes outcomes to the process log. Used when no redis is configured.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) AnswerGraded(_ context.Context, questionID string, wasCorrect bool) {
	log.Printf("telemetry: question=%s correct=%v", questionID, wasCorrect)
}

// RedisSink accumulates per-question counters in a redis hash:
// HINCRBY trivia:stats:{questionID} total/correct.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) AnswerGraded(ctx context.Context, questionID string, wasCorrect bool) {
	key := "trivia:stats:" + questionID
	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, "total", 1)
	if wasCorrect {
		pipe.HIncrBy(ctx, key, "correct", 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("telemetry: record stats for %s: %v", questionID, err)
	}
}
