package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/doublets/internal/link"
)

// GetOrCreate returns the index of (source, target), creating the link
// when the pair is not yet stored. Rejections wrap link.ErrCreationRejected.
func (s *Store) GetOrCreate(ctx context.Context, source, target link.Ref) (link.Ref, error) {
	c := s.Constants()
	if c.IsSentinel(source) || c.IsSentinel(target) {
		return 0, fmt.Errorf("get or create (%d, %d): %w: sentinel reference", source, target, link.ErrCreationRejected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id link.Ref
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, found, err := getRef(txn, pairKey(source, target))
		if err != nil {
			return err
		}
		if found {
			id = existing
			return nil
		}

		for _, end := range []link.Ref{source, target} {
			ok, err := hasKey(txn, linkKey(end))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("get or create (%d, %d): %w: %d: %w",
					source, target, link.ErrCreationRejected, end, link.ErrNotExists)
			}
		}

		if err := s.checkCapacity(txn); err != nil {
			return fmt.Errorf("get or create (%d, %d): %w: %w", source, target, link.ErrCreationRejected, err)
		}

		id, err = issueIndex(txn)
		if err != nil {
			return err
		}
		if err := putLink(txn, id, source, target); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("get or create: %w", err)
	}

	if created {
		s.metrics.LinkCreated(Backend)
		s.logger.Debug("link created", "index", id, "source", source, "target", target)
	} else {
		s.metrics.LinkReused(Backend)
	}
	return id, nil
}

// CreatePoint stores a new self-referential link.
func (s *Store) CreatePoint(ctx context.Context) (link.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id link.Ref
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		id, err = s.createPoint(txn)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create point: %w", err)
	}

	s.metrics.LinkCreated(Backend)
	s.logger.Debug("point created", "index", id)
	return id, nil
}

// NamePoint returns the point registered under the normalized name,
// creating and registering one when the name is new.
func (s *Store) NamePoint(ctx context.Context, name string) (link.Ref, error) {
	name, err := link.NormalizeName(name)
	if err != nil {
		return 0, fmt.Errorf("name point: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id link.Ref
	created := false
	err = s.db.Update(func(txn *badger.Txn) error {
		existing, found, err := getRef(txn, nameKey(name))
		if err != nil {
			return err
		}
		if found {
			id = existing
			return nil
		}

		id, err = s.createPoint(txn)
		if err != nil {
			return err
		}
		if err := txn.Set(nameKey(name), encodeRef(id)); err != nil {
			return fmt.Errorf("set name: %w", err)
		}
		if err := txn.Set(revKey(id), []byte(name)); err != nil {
			return fmt.Errorf("set reverse name: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("name point %q: %w", name, err)
	}

	if created {
		s.metrics.LinkCreated(Backend)
		s.logger.Debug("named point created", "index", id, "name", name)
	}
	return id, nil
}

// DeleteWith removes the link at ref after consulting h. h runs outside
// any transaction and may call the store; a Break leaves the link in
// place. A registered name is removed with its point.
func (s *Store) DeleteWith(ctx context.Context, ref link.Ref, h link.DeleteHandler) error {
	before, ok, err := s.GetLink(ctx, ref)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if !ok {
		return fmt.Errorf("delete %d: %w", ref, link.ErrNotExists)
	}

	c := s.Constants()
	after := link.Link{Index: ref, Source: c.Null, Target: c.Null}
	if h != nil && h(before, after) == link.Break {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		// The link must still be the one h saw.
		current, ok, err := getLink(txn, ref)
		if err != nil {
			return err
		}
		if !ok || current != before {
			return fmt.Errorf("delete %d: %w", ref, link.ErrNotExists)
		}

		if err := txn.Delete(linkKey(ref)); err != nil {
			return fmt.Errorf("delete link: %w", err)
		}
		if err := txn.Delete(pairKey(before.Source, before.Target)); err != nil {
			return fmt.Errorf("delete pair: %w", err)
		}

		item, err := txn.Get(revKey(ref))
		switch {
		case err == nil:
			name, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read name: %w", err)
			}
			if err := txn.Delete(nameKey(string(name))); err != nil {
				return fmt.Errorf("delete name: %w", err)
			}
			if err := txn.Delete(revKey(ref)); err != nil {
				return fmt.Errorf("delete reverse name: %w", err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("read name: %w", err)
		}

		return addCount(txn, -1)
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	s.logger.Debug("link deleted", "index", ref)
	return nil
}

func (s *Store) createPoint(txn *badger.Txn) (link.Ref, error) {
	if err := s.checkCapacity(txn); err != nil {
		return 0, err
	}
	id, err := issueIndex(txn)
	if err != nil {
		return 0, err
	}
	if err := putLink(txn, id, id, id); err != nil {
		return 0, err
	}
	return id, nil
}

// checkCapacity fails with link.ErrCapacityExhausted when one more link
// would exceed the configured maximum.
func (s *Store) checkCapacity(txn *badger.Txn) error {
	if s.maxLinks <= 0 {
		return nil
	}
	count, err := readUint(txn, keyCount)
	if err != nil {
		return err
	}
	if int64(count) >= s.maxLinks {
		return fmt.Errorf("%w: %d links stored, max %d", link.ErrCapacityExhausted, count, s.maxLinks)
	}
	return nil
}

// issueIndex returns the next unused index and advances the counter.
// Indexes are never reissued, even after deletion.
func issueIndex(txn *badger.Txn) (link.Ref, error) {
	next, err := readUint(txn, keyNext)
	if err != nil {
		return 0, err
	}
	if err := txn.Set(keyNext, encodeUint(next+1)); err != nil {
		return 0, fmt.Errorf("advance index counter: %w", err)
	}
	return link.Ref(next), nil
}

func putLink(txn *badger.Txn, id, source, target link.Ref) error {
	if err := txn.Set(linkKey(id), encodeEnds(source, target)); err != nil {
		return fmt.Errorf("set link: %w", err)
	}
	if err := txn.Set(pairKey(source, target), encodeRef(id)); err != nil {
		return fmt.Errorf("set pair: %w", err)
	}
	return addCount(txn, 1)
}

func addCount(txn *badger.Txn, delta int64) error {
	count, err := readUint(txn, keyCount)
	if err != nil {
		return err
	}
	if err := txn.Set(keyCount, encodeUint(uint64(int64(count)+delta))); err != nil {
		return fmt.Errorf("update link count: %w", err)
	}
	return nil
}
