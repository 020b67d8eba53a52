// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package grammar

import (
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/sha3"
)

// Cache memoizes loaded grammars by the hash of their rule text, so
// translators built repeatedly from the same rule file share one table.
type Cache struct {
	grammars *lru.ARCCache
}

// NewCache creates a cache holding at most size grammars.
func NewCache(size int) *Cache {
	if size < 1 {
		size = 1
	}
	grammars, _ := lru.NewARC(size)
	return &Cache{grammars: grammars}
}

// Load returns the cached grammar for text, loading it on a miss.
func (c *Cache) Load(text string) (*Grammar, error) {
	key := textHash(text)
	if g, ok := c.grammars.Get(key); ok {
		return g.(*Grammar), nil
	}
	g, err := Load(text)
	if err != nil {
		return nil, err
	}
	c.grammars.Add(key, g)
	return g, nil
}

// Len returns the number of cached grammars.
func (c *Cache) Len() int { return c.grammars.Len() }

func textHash(text string) [32]byte {
	var h [32]byte
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(text))
	hasher.Sum(h[:0])
	return h
}
