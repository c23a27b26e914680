package slippy

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// TileCache stores fetched tile images on disk so repeat sessions do not
// hammer the tile server.
type TileCache struct {
	db *badger.DB
}

// OpenTileCache opens (or creates) the cache at the given directory.
func OpenTileCache(path string) (*TileCache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &TileCache{db: db}, nil
}

// Close releases the underlying store.
func (c *TileCache) Close() error {
	return c.db.Close()
}

func tileCacheKey(z, x, y int) []byte {
	return []byte(fmt.Sprintf("%d/%d/%d", z, x, y))
}

// Get returns the cached tile bytes, or nil when absent.
func (c *TileCache) Get(z, x, y int) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tileCacheKey(z, x, y))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return val, err
}

// Put stores tile bytes.
func (c *TileCache) Put(z, x, y int, data []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tileCacheKey(z, x, y), data)
	})
}
