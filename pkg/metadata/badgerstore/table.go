package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/filebank/pkg/metadata"
)

// table describes how one record type maps onto the key namespace.
type table[T any] struct {
	ns      namespace
	id      func(*T) *string
	parent  func(*T) string
	name    func(*T) string
	ref     func(*T) *string
	seq     func(*T) *int64
	created func(*T) *time.Time
	updated func(*T) *time.Time
}

func (tb table[T]) load(txn *badgerdb.Txn, id string) (*T, error) {
	item, err := txn.Get(tb.ns.record(id))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, metadata.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec := new(T)
	err = item.Value(func(val []byte) error {
		seq, err := decodeRecord(val, rec)
		if err != nil {
			return err
		}
		*tb.seq(rec) = seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// lookup resolves an index key holding an id.
func (tb table[T]) lookup(txn *badgerdb.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return "", metadata.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// put writes the record and its indexes. prev is the stored version for an
// update (nil on create); its stale index keys are removed.
func (tb table[T]) put(txn *badgerdb.Txn, rec, prev *T) error {
	id := *tb.id(rec)
	nameKey := tb.ns.name(tb.parent(rec), tb.name(rec))

	owner, err := tb.lookup(txn, nameKey)
	switch {
	case err == nil && owner != id:
		return metadata.ErrDuplicate
	case err != nil && !errors.Is(err, metadata.ErrNotFound):
		return err
	}

	if prev != nil {
		if err := tb.dropIndexes(txn, prev); err != nil {
			return err
		}
	}

	data, err := encodeRecord(*tb.seq(rec), rec)
	if err != nil {
		return err
	}

	seq := *tb.seq(rec)
	sets := []struct{ k, v []byte }{
		{tb.ns.record(id), data},
		{nameKey, []byte(id)},
		{tb.ns.order(tb.parent(rec), seq), []byte(id)},
		{tb.ns.ref(*tb.ref(rec), id), nil},
	}
	for _, kv := range sets {
		if err := txn.Set(kv.k, kv.v); err != nil {
			return fmt.Errorf("failed to store %s record: %w", tb.ns, err)
		}
	}
	return nil
}

func (tb table[T]) dropIndexes(txn *badgerdb.Txn, rec *T) error {
	id := *tb.id(rec)
	for _, k := range [][]byte{
		tb.ns.name(tb.parent(rec), tb.name(rec)),
		tb.ns.order(tb.parent(rec), *tb.seq(rec)),
		tb.ns.ref(*tb.ref(rec), id),
	} {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// Store operations shared by directories and files
// ============================================================================

func (tb table[T]) create(ctx context.Context, s *Store, rec *T) error {
	if *tb.id(rec) == "" {
		*tb.id(rec) = uuid.New().String()
	}
	if *tb.seq(rec) == 0 {
		*tb.seq(rec) = metadata.NextSeq()
	}
	now := time.Now().UTC()
	*tb.created(rec) = now
	*tb.updated(rec) = now

	return s.update(ctx, func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(tb.ns.record(*tb.id(rec))); err == nil {
			return metadata.ErrDuplicate
		}
		return tb.put(txn, rec, nil)
	})
}

func (tb table[T]) get(ctx context.Context, s *Store, id string) (*T, error) {
	var rec *T
	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		var err error
		rec, err = tb.load(txn, id)
		return err
	})
	return rec, err
}

func (tb table[T]) find(ctx context.Context, s *Store, parent, name string) (*T, error) {
	var rec *T
	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		id, err := tb.lookup(txn, tb.ns.name(parent, name))
		if err != nil {
			return err
		}
		rec, err = tb.load(txn, id)
		return err
	})
	return rec, err
}

func (tb table[T]) list(ctx context.Context, s *Store, parent string) ([]*T, error) {
	out := []*T{}
	err := s.view(ctx, func(txn *badgerdb.Txn) error {
		prefix := tb.ns.orderPrefix(parent)
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := tb.load(txn, string(id))
			if err != nil {
				return fmt.Errorf("dangling order index for %s: %w", id, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (tb table[T]) save(ctx context.Context, s *Store, rec *T) error {
	return s.update(ctx, func(txn *badgerdb.Txn) error {
		prev, err := tb.load(txn, *tb.id(rec))
		if err != nil {
			return err
		}
		*tb.seq(rec) = *tb.seq(prev)
		*tb.created(rec) = *tb.created(prev)
		*tb.updated(rec) = time.Now().UTC()
		return tb.put(txn, rec, prev)
	})
}

func (tb table[T]) remove(ctx context.Context, s *Store, id string) error {
	return s.update(ctx, func(txn *badgerdb.Txn) error {
		rec, err := tb.load(txn, id)
		if err != nil {
			return err
		}
		if err := tb.dropIndexes(txn, rec); err != nil {
			return err
		}
		return txn.Delete(tb.ns.record(id))
	})
}

func (tb table[T]) rewriteRef(ctx context.Context, s *Store, oldRef, newRef string) (int, error) {
	if oldRef == newRef {
		return 0, nil
	}

	count := 0
	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		var ids []string
		prefix := tb.ns.refPrefix(oldRef)
		it := txn.NewIterator(badgerdb.IteratorOptions{Prefix: prefix})
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		it.Close()

		for _, id := range ids {
			prev, err := tb.load(txn, id)
			if err != nil {
				return err
			}
			rec := *prev
			*tb.ref(&rec) = newRef
			*tb.updated(&rec) = time.Now().UTC()
			if err := tb.put(txn, &rec, prev); err != nil {
				return err
			}
		}
		count = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
