package state

import (
	"context"
	"encoding/json"
	"fmt"
)

// PanelKey is the key the panel geometry is stored under.
const PanelKey = "ProjectPanel"

// KVStore is the opaque key/value blob store the panel persists to.
type KVStore interface {
	ReadKV(ctx context.Context, key string) (string, bool, error)
	WriteKV(ctx context.Context, key, value string) error
}

// SerializedPanel is the persisted panel state.
type SerializedPanel struct {
	Width int `json:"width"`
}

// LoadPanel reads the persisted panel state; ok is false when nothing was saved.
func LoadPanel(ctx context.Context, store KVStore) (SerializedPanel, bool, error) {
	raw, ok, err := store.ReadKV(ctx, PanelKey)
	if err != nil || !ok {
		return SerializedPanel{}, false, err
	}
	var panel SerializedPanel
	if err := json.Unmarshal([]byte(raw), &panel); err != nil {
		return SerializedPanel{}, false, fmt.Errorf("decode %s: %w", PanelKey, err)
	}
	return panel, true, nil
}

// SavePanel writes the panel state.
func SavePanel(ctx context.Context, store KVStore, panel SerializedPanel) error {
	raw, err := json.Marshal(panel)
	if err != nil {
		return err
	}
	return store.WriteKV(ctx, PanelKey, string(raw))
}
