package logger

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/ldb-go/ldb/ring"
)

// TagIndex is an optional tag->offset index the logger maintains
// alongside the raw event log, so a reader can use Offsets to jump
// straight to every record touching a given tag instead of scanning
// ldb.data linearly.
// It's additive: losing it (or never opening one) doesn't change what
// gets logged, only how fast it can be queried afterward.
type TagIndex struct {
	db *leveldb.DB
}

// OpenTagIndex opens (creating if absent) a LevelDB-backed tag index
// at path.
func OpenTagIndex(path string) (*TagIndex, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("logger: open tag index: %w", err)
	}
	return &TagIndex{db: db}, nil
}

// Close closes the underlying database.
func (t *TagIndex) Close() error {
	if t == nil {
		return nil
	}
	return t.db.Close()
}

// Record indexes one tag-kind record (TagSet/TagUnset/TagClear/
// TagBlock) at the given byte offset into the event log, keyed
// tag||offset so a range scan over a tag prefix returns every offset
// in append order.
func (t *TagIndex) Record(tag uint32, offset int64) error {
	if t == nil {
		return nil
	}
	key := make([]byte, 12)
	binary.BigEndian.PutUint32(key[0:4], tag)
	binary.BigEndian.PutUint64(key[4:12], uint64(offset))
	return t.db.Put(key, nil, nil)
}

// Offsets returns every recorded byte offset for tag, in ascending
// order.
func (t *TagIndex) Offsets(tag uint32) ([]int64, error) {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, tag)

	var out []int64
	iter := t.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		k := iter.Key()
		if len(k) < 4 || string(k[:4]) != string(prefix) {
			break
		}
		out = append(out, int64(binary.BigEndian.Uint64(k[4:12])))
	}
	return out, iter.Error()
}

// isTagKind reports whether k is one of the tag-mutation record kinds
// the index tracks.
func isTagKind(k ring.Kind) bool {
	switch k {
	case ring.KindTagSet, ring.KindTagUnset, ring.KindTagClear, ring.KindTagBlock:
		return true
	default:
		return false
	}
}
