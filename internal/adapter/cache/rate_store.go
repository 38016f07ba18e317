package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"fx-converter/internal/domain/model"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/pkg/logger"
)

// StorageKey is the single key the whole rate map is stored under.
const StorageKey = "fx_cache"

type SeedRate struct {
	Pair  model.CurrencyPair
	Entry model.RateEntry
}

// SeedRates are used only for pairs that were never fetched online.
var SeedRates = []SeedRate{
	{Pair: model.CurrencyPair{From: model.JPY, To: model.CZK}, Entry: model.RateEntry{Rate: 0.163, Date: "2026-02-01"}},
	{Pair: model.CurrencyPair{From: model.EUR, To: model.CZK}, Entry: model.RateEntry{Rate: 25.15, Date: "2026-02-01"}},
	{Pair: model.CurrencyPair{From: model.USD, To: model.CZK}, Entry: model.RateEntry{Rate: 23.45, Date: "2026-02-01"}},
	{Pair: model.CurrencyPair{From: model.EUR, To: model.USD}, Entry: model.RateEntry{Rate: 1.048, Date: "2026-02-01"}},
	{Pair: model.CurrencyPair{From: model.EUR, To: model.JPY}, Entry: model.RateEntry{Rate: 157.5, Date: "2026-02-01"}},
	{Pair: model.CurrencyPair{From: model.JPY, To: model.USD}, Entry: model.RateEntry{Rate: 0.00665, Date: "2026-02-01"}},
}

// RateStore keeps the last known rate per pair as one JSON object in a KeyValueStore.
// Entries are never expired. Persistence is best-effort: read and write errors are logged
// and dropped, and a write is skipped when the current blob could not be read.
type RateStore struct {
	kv      ports.KeyValueStore
	seeds   []SeedRate
	log     *logger.Logger
	metrics *metrics.Metrics
	mutex   sync.Mutex
}

func NewRateStore(kv ports.KeyValueStore, log *logger.Logger, metrics *metrics.Metrics) *RateStore {
	return NewRateStoreWithSeeds(kv, SeedRates, log, metrics)
}

func NewRateStoreWithSeeds(kv ports.KeyValueStore, seeds []SeedRate, log *logger.Logger, metrics *metrics.Metrics) *RateStore {
	return &RateStore{
		kv:      kv,
		seeds:   seeds,
		log:     log,
		metrics: metrics,
	}
}

// load reads the blob. A missing or corrupt blob is an empty cache; any other read
// error is returned so callers never write back a map that lost entries.
func (s *RateStore) load(ctx context.Context) (map[string]model.RateEntry, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return map[string]model.RateEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]model.RateEntry{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn("Rate cache is corrupt, treating as empty", "error", err)
		return map[string]model.RateEntry{}, nil
	}
	if entries == nil {
		// a stored "null" decodes to a nil map
		return map[string]model.RateEntry{}, nil
	}
	return entries, nil
}

func (s *RateStore) save(ctx context.Context, entries map[string]model.RateEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.log.Error("Failed to encode rate cache", "error", err)
		s.metrics.StoreWriteFailuresTotal.Inc()
		return
	}

	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		s.log.Error("Failed to persist rate cache", "error", err)
		s.metrics.StoreWriteFailuresTotal.Inc()
	}
}

// Put upserts the entry for pair, overwriting any previous value.
func (s *RateStore) Put(ctx context.Context, pair model.CurrencyPair, entry model.RateEntry) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		s.log.Error("Failed to read rate cache, rate not persisted", "pair", pair.Key(), "error", err)
		s.metrics.StoreWriteFailuresTotal.Inc()
		return
	}
	entries[pair.Key()] = entry
	s.save(ctx, entries)
	s.log.Debug("Rate cached", "pair", pair.Key(), "rate", entry.Rate, "date", entry.Date)
}

func (s *RateStore) Get(ctx context.Context, pair model.CurrencyPair) (*model.RateEntry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		s.log.Warn("Failed to read rate cache", "pair", pair.Key(), "error", err)
		return nil, false
	}

	entry, found := entries[pair.Key()]
	if !found {
		s.log.Debug("Cache miss", "pair", pair.Key())
		return nil, false
	}
	s.log.Debug("Cache hit", "pair", pair.Key(), "date", entry.Date)
	return &entry, true
}

// Seed inserts bootstrap rates for pairs not already present. It writes at most once,
// and not at all when every seed pair is already cached.
func (s *RateStore) Seed(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		s.log.Error("Failed to read rate cache, skipping seed", "error", err)
		s.metrics.StoreWriteFailuresTotal.Inc()
		return
	}

	inserted := 0
	for _, seed := range s.seeds {
		if _, exists := entries[seed.Pair.Key()]; exists {
			continue
		}
		entries[seed.Pair.Key()] = seed.Entry
		inserted++
	}

	if inserted == 0 {
		s.log.Debug("Rate cache already seeded")
		return
	}
	s.save(ctx, entries)
	s.log.Info("Seeded rate cache", "count", inserted)
}

// Entries returns a copy of everything currently cached.
func (s *RateStore) Entries(ctx context.Context) map[string]model.RateEntry {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		s.log.Warn("Failed to read rate cache", "error", err)
		return map[string]model.RateEntry{}
	}
	return entries
}
