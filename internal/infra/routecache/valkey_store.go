package routecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/safetravels/internal/domain/route"
)

// ValkeyStore shares route analyses between instances through a
// Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "route"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (route.Analysis, bool, error) {
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return route.Analysis{}, false, nil
		}
		return route.Analysis{}, false, err
	}
	analysis, err := decodeAnalysis(payload)
	if err != nil {
		return route.Analysis{}, false, err
	}
	return analysis, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, analysis route.Analysis, ttl time.Duration) error {
	payload, err := encodeAnalysis(analysis)
	if err != nil {
		return err
	}
	return s.setString(ctx, s.entryKey(key), payload, ttl)
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return fmt.Sprintf("%s:analysis:%s", s.prefix, key)
}

func encodeAnalysis(a route.Analysis) (string, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode route analysis: %w", err)
	}
	return string(payload), nil
}

func decodeAnalysis(payload string) (route.Analysis, error) {
	var a route.Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return route.Analysis{}, fmt.Errorf("decode route analysis: %w", err)
	}
	return a, nil
}

var _ route.Cache = (*ValkeyStore)(nil)
