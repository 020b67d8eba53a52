// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package cache implements a two-tier store for translated programs: an
// in-memory fastcache in front of an optional LevelDB directory holding
// snappy-compressed values.
package cache

import (
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/probechain/lupy/log"
)

const (
	// minMemory is the floor for the memory tier.
	minMemory = 32 * 1024 * 1024

	handles = 16
)

// Stats counts lookups by the tier that answered them.
type Stats struct {
	MemoryHits uint64
	DiskHits   uint64
	Misses     uint64
}

// Store is a translation cache. It is safe for concurrent use.
type Store struct {
	mem *fastcache.Cache
	db  *leveldb.DB // nil for a memory-only store

	memHits, diskHits, misses uint64

	log log.Logger
}

// New opens a store with a memory tier of memBytes. An empty dir gives a
// memory-only store.
func New(dir string, memBytes int) (*Store, error) {
	if dir == "" {
		return newStore(nil, memBytes), nil
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
	}
	db, err := leveldb.OpenFile(dir, options)
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	s := newStore(db, memBytes)
	s.log.Info("Opened translation cache", "dir", dir)
	return s, nil
}

// NewWithStorage opens a store whose disk tier lives on stor.
func NewWithStorage(stor storage.Storage, memBytes int) (*Store, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, err
	}
	return newStore(db, memBytes), nil
}

func newStore(db *leveldb.DB, memBytes int) *Store {
	if memBytes < minMemory {
		memBytes = minMemory
	}
	return &Store{
		mem: fastcache.New(memBytes),
		db:  db,
		log: log.New("cache", "translations"),
	}
}

// Get returns the value stored under key.
func (s *Store) Get(key []byte) ([]byte, bool) {
	if v, ok := s.mem.HasGet(nil, key); ok {
		atomic.AddUint64(&s.memHits, 1)
		return v, true
	}
	if s.db != nil {
		enc, err := s.db.Get(key, nil)
		switch {
		case err == nil:
			v, err := snappy.Decode(nil, enc)
			if err == nil {
				atomic.AddUint64(&s.diskHits, 1)
				s.mem.Set(key, v)
				return v, true
			}
			s.log.Warn("Dropping corrupt cache entry", "key", key, "err", err)
			s.db.Delete(key, nil)
		case err != leveldb.ErrNotFound:
			s.log.Warn("Cache read failed", "err", err)
		}
	}
	atomic.AddUint64(&s.misses, 1)
	return nil, false
}

// Put stores value under key in both tiers. A failed disk write is logged
// and otherwise ignored; the memory tier still holds the value.
func (s *Store) Put(key, value []byte) {
	s.mem.Set(key, value)
	if s.db == nil {
		return
	}
	if err := s.db.Put(key, snappy.Encode(nil, value), nil); err != nil {
		s.log.Warn("Cache write failed", "err", err)
	}
}

// Stats returns the lookup counters.
func (s *Store) Stats() Stats {
	return Stats{
		MemoryHits: atomic.LoadUint64(&s.memHits),
		DiskHits:   atomic.LoadUint64(&s.diskHits),
		Misses:     atomic.LoadUint64(&s.misses),
	}
}

// Close releases the memory tier and closes the disk tier.
func (s *Store) Close() error {
	s.mem.Reset()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// resetMemory empties the memory tier, leaving the disk tier intact.
func (s *Store) resetMemory() {
	s.mem.Reset()
}
