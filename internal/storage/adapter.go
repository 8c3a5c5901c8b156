package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// FormatVersion is the version written by Save.
const FormatVersion = 1

var loadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_state_load_failures_total",
	Help: "Collections that loaded as empty because the substrate failed or the payload was unreadable.",
}, []string{"reason"})

// envelope is the persisted layout. Version 0 is a bare JSON array.
type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

// Adapter reads and writes whole collections of T under a key.
type Adapter[T any] struct {
	kv     KV
	logger *slog.Logger
}

// NewAdapter creates an adapter over kv.
func NewAdapter[T any](kv KV, logger *slog.Logger) *Adapter[T] {
	return &Adapter[T]{kv: kv, logger: logger}
}

// Load returns the collection stored under key. It never fails: an absent
// key, a substrate error or an unreadable payload all yield an empty
// collection, and the latter two are logged.
func (a *Adapter[T]) Load(ctx context.Context, key string) []T {
	data, err := a.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			loadFailures.WithLabelValues("substrate").Inc()
			a.logger.WarnContext(ctx, "failed to read stored collection, starting empty",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return []T{}
	}

	items, err := Decode[T](data)
	if err != nil {
		loadFailures.WithLabelValues("corrupt").Inc()
		a.logger.WarnContext(ctx, "stored collection is unreadable, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	return items
}

// Save writes the full collection under key.
func (a *Adapter[T]) Save(ctx context.Context, key string, items []T) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Encode serializes items in the current format.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(envelope[T]{Version: FormatVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}
	return data, nil
}

// Decode parses either the current envelope or a bare array.
func Decode[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode legacy collection: %w", err)
		}
		return nonNil(items), nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported collection version %d", env.Version)
	}
	return nonNil(env.Items), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
