// Package stream publishes rollout transitions to a Redis stream.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alexunderch/PufferLib/space"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the stream key used when none is given.
const DefaultKey = "puffer:transitions"

// Transition is one agent's step.
type Transition struct {
	Env     uuid.UUID
	Episode uuid.UUID
	Agent   string
	Step    int
	Obs     space.Array
	Reward  float64
	Done    bool
}

// Stream appends transitions to one Redis stream key.
type Stream struct {
	client redis.UniversalClient
	key    string
	maxLen int64
	owned  bool
}

// New wraps an existing client. maxLen > 0 caps the stream approximately.
func New(client redis.UniversalClient, key string, maxLen int64) *Stream {
	if key == "" {
		key = DefaultKey
	}
	return &Stream{client: client, key: key, maxLen: maxLen}
}

// Dial connects to the redis:// url and checks the connection.
func Dial(ctx context.Context, url, key string, maxLen int64) (*Stream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("stream: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("stream: ping: %w", err)
	}
	s := New(client, key, maxLen)
	s.owned = true
	return s, nil
}

// Key is the stream key.
func (s *Stream) Key() string { return s.key }

// Publish appends tr and returns the entry id.
func (s *Stream) Publish(ctx context.Context, tr Transition) (string, error) {
	values, err := encode(tr)
	if err != nil {
		return "", err
	}
	args := &redis.XAddArgs{Stream: s.key, Values: values}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("stream: xadd %s: %w", s.key, err)
	}
	return id, nil
}

// Range reads up to count entries from the start of the stream.
func (s *Stream) Range(ctx context.Context, count int64) ([]Transition, error) {
	msgs, err := s.client.XRangeN(ctx, s.key, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("stream: xrange %s: %w", s.key, err)
	}
	out := make([]Transition, 0, len(msgs))
	for _, m := range msgs {
		tr, err := decode(m.Values)
		if err != nil {
			return nil, fmt.Errorf("stream: entry %s: %w", m.ID, err)
		}
		out = append(out, tr)
	}
	return out, nil
}

// Close closes the client if Dial opened it.
func (s *Stream) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func encode(tr Transition) ([]any, error) {
	obs, err := json.Marshal(tr.Obs)
	if err != nil {
		return nil, fmt.Errorf("stream: encode obs: %w", err)
	}
	return []any{
		"env", tr.Env.String(),
		"episode", tr.Episode.String(),
		"agent", tr.Agent,
		"step", strconv.Itoa(tr.Step),
		"obs", string(obs),
		"reward", strconv.FormatFloat(tr.Reward, 'g', -1, 64),
		"done", strconv.FormatBool(tr.Done),
	}, nil
}

func decode(values map[string]any) (Transition, error) {
	field := func(name string) (string, error) {
		v, ok := values[name].(string)
		if !ok {
			return "", fmt.Errorf("missing field %q", name)
		}
		return v, nil
	}
	var (
		tr  Transition
		raw = map[string]string{}
	)
	for _, name := range []string{"env", "episode", "agent", "step", "obs", "reward", "done"} {
		v, err := field(name)
		if err != nil {
			return Transition{}, err
		}
		raw[name] = v
	}

	var err error
	if tr.Env, err = uuid.Parse(raw["env"]); err != nil {
		return Transition{}, fmt.Errorf("env: %w", err)
	}
	if tr.Episode, err = uuid.Parse(raw["episode"]); err != nil {
		return Transition{}, fmt.Errorf("episode: %w", err)
	}
	tr.Agent = raw["agent"]
	if tr.Step, err = strconv.Atoi(raw["step"]); err != nil {
		return Transition{}, fmt.Errorf("step: %w", err)
	}
	if err = json.Unmarshal([]byte(raw["obs"]), &tr.Obs); err != nil {
		return Transition{}, fmt.Errorf("obs: %w", err)
	}
	if tr.Reward, err = strconv.ParseFloat(raw["reward"], 64); err != nil {
		return Transition{}, fmt.Errorf("reward: %w", err)
	}
	if tr.Done, err = strconv.ParseBool(raw["done"]); err != nil {
		return Transition{}, fmt.Errorf("done: %w", err)
	}
	return tr, nil
}
