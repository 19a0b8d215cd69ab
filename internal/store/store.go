package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"memo-cli/internal/model"

	"go.uber.org/zap"
)

// DefaultKey is the well-known key the memo list is stored under.
const DefaultKey = "memos"

// Store reads and writes the whole memo list as one JSON array under a key.
type Store struct {
	KV  KV
	Log *zap.Logger
}

func New(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{KV: kv, Log: log}
}

func (s *Store) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Load returns the memos stored at key.
//
// It never fails: a missing key, a backend read error, invalid JSON or a value
// of the wrong shape all yield an empty list. Callers treat that as first run.
func (s *Store) Load(ctx context.Context, key string) []model.Memo {
	log := s.logger().With(zap.String("key", key))
	if s.KV == nil {
		log.Warn("load: no backend configured")
		return []model.Memo{}
	}
	b, ok, err := s.KV.Get(ctx, key)
	if err != nil {
		log.Warn("load: read failed; treating as empty", zap.Error(err))
		return []model.Memo{}
	}
	if !ok {
		return []model.Memo{}
	}
	memos, err := decodeMemos(b)
	if err != nil {
		log.Warn("load: stored value is unusable; treating as empty", zap.Error(err))
		return []model.Memo{}
	}
	return memos
}

// Save overwrites the value at key with the full ordered list.
func (s *Store) Save(ctx context.Context, key string, memos []model.Memo) error {
	if s.KV == nil {
		return errors.New("save: no backend configured")
	}
	if memos == nil {
		memos = []model.Memo{}
	}
	b, err := json.Marshal(memos)
	if err != nil {
		return err
	}
	if err := s.KV.Put(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.KV == nil {
		return nil
	}
	return s.KV.Close()
}

// wireMemo uses pointers so missing fields can be told apart from zero values.
type wireMemo struct {
	ID        *string  `json:"id"`
	Title     *string  `json:"title"`
	Body      *string  `json:"body"`
	CreatedAt *float64 `json:"createdAt"`
	UpdatedAt *float64 `json:"updatedAt"`
}

func decodeMemos(b []byte) ([]model.Memo, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return []model.Memo{}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("not a json array: %w", err)
	}
	out := make([]model.Memo, 0, len(raw))
	seen := map[string]bool{}
	for i, r := range raw {
		var w wireMemo
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if w.ID == nil || strings.TrimSpace(*w.ID) == "" {
			return nil, fmt.Errorf("element %d: missing id", i)
		}
		if w.Title == nil || w.Body == nil {
			return nil, fmt.Errorf("element %d: missing title/body", i)
		}
		if w.CreatedAt == nil || w.UpdatedAt == nil {
			return nil, fmt.Errorf("element %d: missing createdAt/updatedAt", i)
		}
		if seen[*w.ID] {
			return nil, fmt.Errorf("element %d: duplicate id %s", i, *w.ID)
		}
		seen[*w.ID] = true
		out = append(out, model.Memo{
			ID:        *w.ID,
			Title:     *w.Title,
			Body:      *w.Body,
			CreatedAt: int64(*w.CreatedAt),
			UpdatedAt: int64(*w.UpdatedAt),
		})
	}
	return out, nil
}
