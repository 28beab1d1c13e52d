// Package journal persists kernel events outside the process: a Redis
// journal per aggregate stream, an asynchronous recorder that feeds it from
// a Kernel subscription, and hibernators that hold the logs of closed
// sessions
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/bedrock"
)

type (
	// StoreConfig describes the Redis connection for a Store
	StoreConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// Store is a Redis journal of event streams. Each stream holds the
	// events of one aggregate within one session
	Store struct {
		client          *redis.Client
		prefix          string
		appendEventsLua *redis.Script
		getEventsLua    *redis.Script
	}

	// StreamID addresses the events of one aggregate within a session
	StreamID struct {
		Session   string
		Aggregate string
	}

	// SequenceConflictError is returned by Append when the stream has moved
	// past the caller's expected sequence
	SequenceConflictError struct {
		NewEvents        []*bedrock.Event
		ExpectedSequence int64
		ActualSequence   int64
	}
)

const (
	RedisConnectTimeout = 5 * time.Second

	DefaultPrefix = "bedrock"

	eventsSuffix = ":events"
)

var (
	// ErrUnexpectedLuaResult is returned when a script reply is malformed
	ErrUnexpectedLuaResult = errors.New("unexpected result from Lua script")

	// ErrSessionRequired is returned for stream operations with no session
	ErrSessionRequired = errors.New("session is required")
)

// NewStore connects to Redis and verifies the connection
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, RedisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client:          client,
		prefix:          prefix,
		appendEventsLua: redis.NewScript(luaAppendEvents),
		getEventsLua:    redis.NewScript(luaGetEvents),
	}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Append adds events to a stream if the stream currently ends at atSeq
func (s *Store) Append(
	ctx context.Context, id StreamID, atSeq int64, evs []*bedrock.Event,
) error {
	if len(evs) == 0 {
		return nil
	}
	if id.Session == "" {
		return ErrSessionRequired
	}

	keys := []string{s.eventsKey(id)}
	args := make([]any, 0, len(evs)+1)
	args = append(args, atSeq)

	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		args = append(args, string(data))
	}

	result, err := s.appendEventsLua.Run(ctx, s.client, keys, args...).Result()
	if err != nil {
		return err
	}

	res, ok := result.([]any)
	if !ok || len(res) < 2 {
		return ErrUnexpectedLuaResult
	}
	success, _ := res[0].(int64)
	seq, _ := res[1].(int64)

	if success == 0 {
		var raw []any
		if len(res) > 2 {
			raw, _ = res[2].([]any)
		}
		return s.sequenceConflict(raw, atSeq, seq)
	}
	return nil
}

// Events returns the events of a stream starting at fromSeq
func (s *Store) Events(
	ctx context.Context, id StreamID, fromSeq int64,
) ([]*bedrock.Event, error) {
	keys := []string{s.eventsKey(id)}
	result, err := s.getEventsLua.Run(ctx, s.client, keys, fromSeq).Result()
	if err != nil {
		return nil, err
	}
	raw, ok := result.([]any)
	if !ok {
		return nil, ErrUnexpectedLuaResult
	}
	return unmarshalEvents(raw)
}

// Aggregates lists the aggregates that have a stream in the session
func (s *Store) Aggregates(
	ctx context.Context, session string,
) ([]string, error) {
	if session == "" {
		return nil, ErrSessionRequired
	}
	sessionPrefix := s.sessionPrefix(session)
	var res []string
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*"+eventsSuffix, 0).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), sessionPrefix)
		res = append(res, strings.TrimSuffix(key, eventsSuffix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Purge removes every stream of the session
func (s *Store) Purge(ctx context.Context, session string) error {
	aggs, err := s.Aggregates(ctx, session)
	if err != nil || len(aggs) == 0 {
		return err
	}
	keys := make([]string, len(aggs))
	for i, agg := range aggs {
		keys[i] = s.eventsKey(StreamID{Session: session, Aggregate: agg})
	}
	return s.client.Del(ctx, keys...).Err()
}

func (e *SequenceConflictError) Error() string {
	return fmt.Sprintf(
		"sequence conflict: expected sequence %d, but at %d (%d new events)",
		e.ExpectedSequence, e.ActualSequence, len(e.NewEvents),
	)
}

func (s *Store) sequenceConflict(
	raw []any, expectedSeq, actualSeq int64,
) error {
	newEvs, err := unmarshalEvents(raw)
	if err != nil {
		return err
	}
	return &SequenceConflictError{
		ExpectedSequence: expectedSeq,
		ActualSequence:   actualSeq,
		NewEvents:        newEvs,
	}
}

func (s *Store) sessionPrefix(session string) string {
	return fmt.Sprintf("%s:%s:", s.prefix, session)
}

func (s *Store) eventsKey(id StreamID) string {
	return s.sessionPrefix(id.Session) + id.Aggregate + eventsSuffix
}

func unmarshalEvents(data []any) ([]*bedrock.Event, error) {
	events := make([]*bedrock.Event, 0, len(data))
	for _, item := range data {
		str, ok := item.(string)
		if !ok {
			return nil, ErrUnexpectedLuaResult
		}
		ev := &bedrock.Event{}
		if err := json.Unmarshal([]byte(str), ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
