// Package cache implements the Reference Statistics Cache (spec §4.9,
// component C9): a fingerprint-keyed, content-addressed store for a
// REFERENCE's analysis bundle, so repeated mastering runs against the
// same REFERENCE skip Stage 0-2 reference analysis.
//
// Backed by go.etcd.io/bbolt (grounded on the examples pack's
// go-musicfox-go-musicfox dependency on the same library — see
// DESIGN.md) rather than hand-rolled file I/O: bbolt gives us a single
// file, crash-safe, single-writer-at-a-time store for free, which is
// exactly the "lock held only during persist" semantics spec §5 asks for.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("reference_bundles")

// Bundle mirrors the Reference Statistics Bundle of spec §3.
type Bundle struct {
	RefMatchingRMSMid  float64
	RefMatchingRMSSide float64
	RefAvgSpectrumMid  []float64
	RefAvgSpectrumSide []float64
	RefPeak            float64
	RefSampleCount     int64
	InternalRate       int
	FFTSize            int
	PieceSize          int
}

// Fingerprint derives the cache key of spec §4.9:
// hash(REFERENCE decoded PCM bytes || internal_rate || fft_size ||
// piece_size || smoothing_span).
func Fingerprint(referencePCM []byte, internalRate, fftSize, pieceSize int, loessSpan float64) string {
	h := sha256.New()
	h.Write(referencePCM)
	fmt.Fprintf(h, "|%d|%d|%d|%g", internalRate, fftSize, pieceSize, loessSpan)
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a content-addressed store of Bundles, advisory and safe to
// delete (spec §4.9/§6): a missing or unreadable file degrades to
// "always miss" rather than failing the pipeline.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the cache database under dir. A nil
// *Cache with a non-nil error signals the caller should treat the cache as
// entirely unavailable; callers are expected to fall back to always-miss
// rather than abort the pipeline over a cache failure.
func Open(dir string) (*Cache, error) {
	path := filepath.Join(dir, "refcache.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached Bundle for fingerprint, and whether it was
// found. A corrupt stored entry is treated as a fatal internal-invariant
// error (spec §7's taxonomy), not a miss, since corruption signals the
// on-disk format itself is broken rather than simply absent.
func (c *Cache) Lookup(fingerprint string) (*Bundle, bool, error) {
	if c == nil || c.db == nil {
		return nil, false, nil
	}
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get([]byte(fingerprint))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, nil
	}
	if raw == nil {
		return nil, false, nil
	}

	var bundle Bundle
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&bundle); err != nil {
		return nil, false, fmt.Errorf("cache bundle corrupt for %s: %w", fingerprint, err)
	}
	return &bundle, true, nil
}

// Store persists bundle under fingerprint. The write happens inside a
// single bbolt read-write transaction; bbolt serializes writers, so
// concurrent Store calls for the same (or different) fingerprints never
// interleave, satisfying spec §5/§9's "write-to-temp-then-rename or
// last-writer-wins" requirement without extra application-level locking.
func (c *Cache) Store(fingerprint string, bundle Bundle) error {
	if c == nil || c.db == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(bundle); err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(fingerprint), buf.Bytes())
	})
}
