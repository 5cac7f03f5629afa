package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/doublets/internal/link"
)

// Exist reports whether a link with this index is stored.
func (s *Store) Exist(ctx context.Context, ref link.Ref) (bool, error) {
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = hasKey(txn, linkKey(ref))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check exist %d: %w", ref, err)
	}
	return ok, nil
}

// GetLink returns the stored link; ok is false when it does not exist.
func (s *Store) GetLink(ctx context.Context, ref link.Ref) (link.Link, bool, error) {
	var l link.Link
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		l, ok, err = getLink(txn, ref)
		return err
	})
	if err != nil {
		return link.Link{}, false, fmt.Errorf("get link %d: %w", ref, err)
	}
	return l, ok, nil
}

// Search returns the index of (source, target) or Null when absent.
func (s *Store) Search(ctx context.Context, source, target link.Ref) (link.Ref, error) {
	id := s.Constants().Null
	err := s.db.View(func(txn *badger.Txn) error {
		r, found, err := getRef(txn, pairKey(source, target))
		if found {
			id = r
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("search (%d, %d): %w", source, target, err)
	}
	return id, nil
}

// Each yields every link matching p in index order.
//
// Each range opens a fresh read transaction, so the sequence can be
// ranged over repeatedly. An exact index or an exact (source, target) pair
// is answered by a direct lookup instead of a prefix scan.
func (s *Store) Each(ctx context.Context, p link.Pattern) iter.Seq2[link.Link, error] {
	return func(yield func(link.Link, error) bool) {
		txn := s.db.NewTransaction(false)
		defer txn.Discard()

		if idx, ok := p.Index.Ref(); ok {
			l, found, err := getLink(txn, idx)
			if err != nil {
				yield(link.Link{}, err)
				return
			}
			if found && p.Match(l) {
				yield(l, nil)
			}
			return
		}

		source, hasSource := p.Source.Ref()
		target, hasTarget := p.Target.Ref()
		if hasSource && hasTarget {
			id, found, err := getRef(txn, pairKey(source, target))
			if err != nil {
				yield(link.Link{}, err)
				return
			}
			if found {
				yield(link.Link{Index: id, Source: source, Target: target}, nil)
			}
			return
		}

		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefixLink,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				yield(link.Link{}, err)
				return
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				yield(link.Link{}, fmt.Errorf("read link value: %w", err))
				return
			}
			l, err := decodeLink(item.KeyCopy(nil), val)
			if err != nil {
				yield(link.Link{}, err)
				return
			}
			if !p.Match(l) {
				continue
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}

// Count returns the number of links matching p.
func (s *Store) Count(ctx context.Context, p link.Pattern) (int64, error) {
	if p.Index.IsAny() && p.Source.IsAny() && p.Target.IsAny() {
		var n uint64
		err := s.db.View(func(txn *badger.Txn) error {
			var err error
			n, err = readUint(txn, keyCount)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("count links: %w", err)
		}
		return int64(n), nil
	}

	var n int64
	for _, err := range s.Each(ctx, p) {
		if err != nil {
			return 0, fmt.Errorf("count links: %w", err)
		}
		n++
	}
	return n, nil
}

// NameOf returns the name registered for ref.
func (s *Store) NameOf(ctx context.Context, ref link.Ref) (string, bool, error) {
	var name string
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(revKey(ref))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		name, ok = string(val), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("name of %d: %w", ref, err)
	}
	return name, ok, nil
}

func hasKey(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	return true, nil
}

func getRef(txn *badger.Txn, key []byte) (link.Ref, bool, error) {
	v, found, err := getUint(txn, key)
	return link.Ref(v), found, err
}

func getUint(txn *badger.Txn, key []byte) (uint64, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %q: %w", key, err)
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		var derr error
		v, derr = decodeUint(val)
		return derr
	})
	if err != nil {
		return 0, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, true, nil
}

// readUint reads a counter key that must exist.
func readUint(txn *badger.Txn, key []byte) (uint64, error) {
	v, found, err := getUint(txn, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("missing counter %q", key)
	}
	return v, nil
}

func getLink(txn *badger.Txn, ref link.Ref) (link.Link, bool, error) {
	key := linkKey(ref)
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return link.Link{}, false, nil
	}
	if err != nil {
		return link.Link{}, false, fmt.Errorf("get link %d: %w", ref, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return link.Link{}, false, fmt.Errorf("read link %d: %w", ref, err)
	}
	l, err := decodeLink(key, val)
	if err != nil {
		return link.Link{}, false, err
	}
	return l, true, nil
}
