package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// OpenState remembers which nodes were open so a later session can expand
// them again as they appear.
type OpenState interface {
	IsOpen(id string) bool
	SetOpen(id string, open bool) error
	List(ctx context.Context) []string
	Clear() error
}

const openPrefix = "open"

// LoadOpenState opens the diskv backed state under cfg's base path. Each
// server gets its own namespace.
func LoadOpenState(cfg *Config) (OpenState, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &openState{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      256 * 1024,
		}),
		scope: encode(cfg.Server),
	}, nil
}

type openState struct {
	d     *diskv.Diskv
	scope string
}

func (s *openState) key(id string) string {
	return strings.Join([]string{openPrefix, s.scope, encode(id)}, "-")
}

func (s *openState) IsOpen(id string) bool {
	return s.d.Has(s.key(id))
}

func (s *openState) SetOpen(id string, open bool) error {
	key := s.key(id)
	if !open {
		if !s.d.Has(key) {
			return nil
		}
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("store: forget %q: %w", id, err)
		}
		return nil
	}
	if err := s.d.Write(key, []byte(id)); err != nil {
		return fmt.Errorf("store: remember %q: %w", id, err)
	}
	return nil
}

func (s *openState) List(ctx context.Context) []string {
	prefix := strings.Join([]string{openPrefix, s.scope, ""}, "-")
	var ids []string
	for key := range s.d.KeysPrefix(prefix, ctx.Done()) {
		pk := keyToPathTransform(key)
		id, err := decode64(pk.FileName)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *openState) Clear() error {
	for _, id := range s.List(context.Background()) {
		if err := s.SetOpen(id, false); err != nil {
			return err
		}
	}
	return nil
}

// Memory is an OpenState that lives only as long as the process.
func Memory() OpenState {
	return &memoryState{open: make(map[string]struct{})}
}

type memoryState struct {
	mu   sync.Mutex
	open map[string]struct{}
}

func (m *memoryState) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.open[id]
	return ok
}

func (m *memoryState) SetOpen(id string, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if open {
		m.open[id] = struct{}{}
	} else {
		delete(m.open, id)
	}
	return nil
}

func (m *memoryState) List(context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *memoryState) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = make(map[string]struct{})
	return nil
}

// keys are `open-scope-id` with scope and id hex encoded.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func encode(s string) string {
	if s == "" {
		return "_"
	}
	return hex.EncodeToString([]byte(s))
}

func decode64(s string) (string, error) {
	if s == "_" {
		return "", nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
