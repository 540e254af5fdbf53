package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Snapshot metadata keys. ImportSnapshot ignores both.
const (
	ExportDateKey = "export_date"
	AppVersionKey = "app_version"
)

// DefaultAppVersion is written into exported snapshots.
const DefaultAppVersion = "1.0.0"

// Schema describes one known key.
type Schema struct {
	Key string
	// Required keys are reported by Validate when absent.
	Required bool
	// Check returns human-readable problems with a stored value. Nil accepts any JSON.
	Check func(raw json.RawMessage) []string
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Schemas lists every known data key.
	Schemas []Schema
	// LastSaveKey receives the epoch-millisecond time of every successful Save.
	LastSaveKey string
	// AppVersion defaults to DefaultAppVersion.
	AppVersion string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager reads and writes JSON values to a Store under a fixed set of known keys.
// It is safe for concurrent use as long as its Store is.
type Manager struct {
	store   Store
	schemas map[string]Schema
	order   []string
	lastKey string
	version string
	now     func() time.Time
	logger  *zap.Logger
}

// ImportResult reports the per-key outcome of ImportSnapshot.
type ImportResult struct {
	Imported []string
	// Skipped holds unrecognized keys present in the document.
	Skipped []string
	// Failed maps keys that could not be restored to the reason.
	Failed map[string]string
}

// Complete reports whether every recognized key was restored.
func (r ImportResult) Complete() bool {
	return len(r.Failed) == 0
}

// ValidationReport is the result of Validate.
type ValidationReport struct {
	Valid  bool
	Issues []string
}

// Info describes what is currently stored.
type Info struct {
	// TotalKeys counts the known keys, the last-save key included, that hold a value.
	TotalKeys int
	// LastSave is zero when nothing has been saved.
	LastSave   time.Time
	DataExists map[string]bool
}

// NewManager creates a Manager over store.
//
// Precondition: store and logger must be non-nil; cfg.LastSaveKey must be non-empty
// and distinct from every schema key.
func NewManager(store Store, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if store == nil {
		panic("storage.NewManager: store must not be nil")
	}
	if logger == nil {
		panic("storage.NewManager: logger must not be nil")
	}
	if cfg.LastSaveKey == "" {
		panic("storage.NewManager: last save key must not be empty")
	}
	if cfg.AppVersion == "" {
		cfg.AppVersion = DefaultAppVersion
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := &Manager{
		store:   store,
		schemas: make(map[string]Schema, len(cfg.Schemas)),
		lastKey: cfg.LastSaveKey,
		version: cfg.AppVersion,
		now:     cfg.Now,
		logger:  logger,
	}
	for _, s := range cfg.Schemas {
		if s.Key == cfg.LastSaveKey {
			panic(fmt.Sprintf("storage.NewManager: schema key %q collides with the last save key", s.Key))
		}
		if _, dup := m.schemas[s.Key]; dup {
			panic(fmt.Sprintf("storage.NewManager: duplicate schema key %q", s.Key))
		}
		m.schemas[s.Key] = s
		m.order = append(m.order, s.Key)
	}
	return m
}

// Keys returns every known key in registration order, the last-save key last.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.order)+1)
	keys = append(keys, m.order...)
	return append(keys, m.lastKey)
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Save JSON-encodes v under key and records the save time.
//
// Postcondition: on error the failure is logged and returned; nothing panics.
func (m *Manager) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		m.logger.Error("encoding value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return m.write(ctx, key, raw)
}

func (m *Manager) write(ctx context.Context, key string, raw []byte) error {
	if err := m.store.Set(ctx, key, raw); err != nil {
		m.logger.Error("saving value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("saving %s: %w", key, err)
	}
	if err := m.touch(ctx); err != nil {
		return err
	}
	m.logger.Debug("saved", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

func (m *Manager) touch(ctx context.Context) error {
	stamp := strconv.FormatInt(m.now().UnixMilli(), 10)
	if err := m.store.Set(ctx, m.lastKey, []byte(stamp)); err != nil {
		m.logger.Error("recording save time", zap.Error(err))
		return fmt.Errorf("saving %s: %w", m.lastKey, err)
	}
	return nil
}

// Load decodes the value stored under key, or returns def when the key is missing,
// unreadable, or does not decode into T.
//
// Postcondition: never fails; anomalies are logged at warn.
func Load[T any](ctx context.Context, m *Manager, key string, def T) T {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("loading value, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		m.logger.Warn("decoding value, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return v
}

// RemoveAll deletes every known key.
//
// Postcondition: when the batch delete fails, each key is retried alone and the
// returned error names every key that could not be removed.
func (m *Manager) RemoveAll(ctx context.Context) error {
	keys := m.Keys()
	err := m.store.Delete(ctx, keys...)
	if err == nil {
		m.logger.Info("all saved data removed", zap.Int("keys", len(keys)))
		return nil
	}
	m.logger.Warn("batch delete failed, retrying per key", zap.Error(err))

	var errs []error
	for _, k := range keys {
		if err := m.store.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", k, err))
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		m.logger.Error("removing saved data", zap.Int("failed", len(errs)), zap.Error(err))
		return err
	}
	return nil
}

// ExportSnapshot returns one JSON object holding every stored known key plus the
// export_date (epoch ms) and app_version metadata. Corrupt values are left out.
func (m *Manager) ExportSnapshot(ctx context.Context) ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(m.order)+3)
	for _, k := range m.Keys() {
		raw, ok, err := m.store.Get(ctx, k)
		if errors.Is(err, ErrCorrupt) || (err == nil && ok && !json.Valid(raw)) {
			m.logger.Warn("skipping corrupt value in export", zap.String("key", k))
			continue
		}
		if err != nil {
			m.logger.Error("exporting value", zap.String("key", k), zap.Error(err))
			return nil, fmt.Errorf("exporting %s: %w", k, err)
		}
		if !ok {
			continue
		}
		doc[k] = raw
	}
	doc[ExportDateKey] = json.RawMessage(strconv.FormatInt(m.now().UnixMilli(), 10))
	version, _ := json.Marshal(m.version)
	doc[AppVersionKey] = version

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	m.logger.Info("snapshot exported", zap.Int("keys", len(doc)-2))
	return out, nil
}

// ImportSnapshot restores every recognized key of an exported document.
//
// Postcondition: a document that is not a JSON object returns an error and changes
// nothing. Otherwise each key is restored independently; a key failing its schema
// check or its write is listed in Failed and the rest still import.
func (m *Manager) ImportSnapshot(ctx context.Context, doc []byte) (ImportResult, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(doc, &entries); err != nil {
		m.logger.Error("parsing snapshot", zap.Error(err))
		return ImportResult{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	if entries == nil {
		return ImportResult{}, errors.New("parsing snapshot: document is null")
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := ImportResult{Failed: map[string]string{}}
	for _, k := range keys {
		if k == ExportDateKey || k == AppVersionKey || k == m.lastKey {
			continue
		}
		schema, known := m.schemas[k]
		if !known {
			res.Skipped = append(res.Skipped, k)
			continue
		}
		raw := entries[k]
		if schema.Check != nil {
			if issues := schema.Check(raw); len(issues) > 0 {
				res.Failed[k] = issues[0]
				continue
			}
		}
		if err := m.store.Set(ctx, k, raw); err != nil {
			m.logger.Error("importing value", zap.String("key", k), zap.Error(err))
			res.Failed[k] = err.Error()
			continue
		}
		res.Imported = append(res.Imported, k)
	}
	if len(res.Imported) > 0 {
		if err := m.touch(ctx); err != nil {
			res.Failed[m.lastKey] = err.Error()
		}
	}

	if res.Complete() {
		m.logger.Info("snapshot imported", zap.Strings("keys", res.Imported), zap.Strings("skipped", res.Skipped))
	} else {
		m.logger.Warn("snapshot partially imported",
			zap.Strings("keys", res.Imported),
			zap.Strings("skipped", res.Skipped),
			zap.Any("failed", res.Failed),
		)
	}
	return res, nil
}

// Validate checks that required keys are present and that every stored key passes
// its schema check.
func (m *Manager) Validate(ctx context.Context) ValidationReport {
	var issues []string
	for _, k := range m.order {
		s := m.schemas[k]
		raw, ok, err := m.store.Get(ctx, k)
		switch {
		case err != nil:
			issues = append(issues, fmt.Sprintf("%s: unreadable (%v)", k, err))
		case !ok:
			if s.Required {
				issues = append(issues, fmt.Sprintf("missing %s", k))
			}
		case !json.Valid(raw):
			issues = append(issues, fmt.Sprintf("%s: corrupted data", k))
		case s.Check != nil:
			for _, issue := range s.Check(raw) {
				issues = append(issues, fmt.Sprintf("%s: %s", k, issue))
			}
		}
	}
	return ValidationReport{Valid: len(issues) == 0, Issues: issues}
}

// Info reports which known keys hold data and when the last save happened.
func (m *Manager) Info(ctx context.Context) Info {
	info := Info{DataExists: make(map[string]bool, len(m.order)+1)}
	for _, k := range m.Keys() {
		raw, ok, err := m.store.Get(ctx, k)
		if err != nil {
			m.logger.Warn("reading storage info", zap.String("key", k), zap.Error(err))
		}
		info.DataExists[k] = ok
		if !ok {
			continue
		}
		info.TotalKeys++
		if k == m.lastKey {
			if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
				info.LastSave = time.UnixMilli(ms)
			}
		}
	}
	return info
}
