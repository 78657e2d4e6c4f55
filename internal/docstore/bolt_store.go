package docstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	bolt "go.etcd.io/bbolt"
)

// boltCollections are the buckets created on open. Unknown collections
// are rejected the same way the gorm backend rejects them.
var boltCollections = []string{"products", "orders", "sys_config", "sys_opr"}

// BoltStore implements Store on an embedded bbolt file: one bucket per
// collection, jsoniter-encoded records keyed by decimal id. Filtering
// and ordering happen in memory, which is fine at single-shop scale.
type BoltStore struct {
	db   *bolt.DB
	node *snowflake.Node
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range boltCollections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init bolt buckets")
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init id node")
	}
	return &BoltStore{db: db, node: node}, nil
}

func (s *BoltStore) bucket(tx *bolt.Tx, collection string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(collection))
	if b == nil {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	return b, nil
}

func (s *BoltStore) List(ctx context.Context, collection string, q Query) ([]Record, int64, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, collection)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var rec Record
			if err := recordJSON.Unmarshal(v, &rec); err != nil {
				return errors.Wrap(err, "decode stored record")
			}
			if matchRecord(rec, q) {
				records = append(records, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	if q.OrderBy != "" {
		sortRecords(records, q.OrderBy, q.Desc)
	}
	total := int64(len(records))
	if q.Offset > 0 {
		if q.Offset >= len(records) {
			records = nil
		} else {
			records = records[q.Offset:]
		}
	}
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, total, nil
}

func (s *BoltStore) Get(ctx context.Context, collection string, id int64) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, collection)
		if err != nil {
			return err
		}
		v := b.Get(recordKey(id))
		if v == nil {
			return ErrNotFound
		}
		return recordJSON.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) Create(ctx context.Context, collection string, rec Record) (int64, error) {
	id := RecordID(rec)
	if id == 0 {
		id = s.node.Generate().Int64()
	}

	stored := make(Record, len(rec)+1)
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = strconv.FormatInt(id, 10)

	data, err := recordJSON.Marshal(stored)
	if err != nil {
		return 0, errors.Wrap(err, "encode record")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, collection)
		if err != nil {
			return err
		}
		return b.Put(recordKey(id), data)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *BoltStore) Update(ctx context.Context, collection string, id int64, partial Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, collection)
		if err != nil {
			return err
		}
		v := b.Get(recordKey(id))
		if v == nil {
			return ErrNotFound
		}
		var rec Record
		if err := recordJSON.Unmarshal(v, &rec); err != nil {
			return errors.Wrap(err, "decode stored record")
		}
		for field, value := range partial {
			if field == "id" {
				continue
			}
			rec[field] = value
		}
		data, err := recordJSON.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "encode record")
		}
		return b.Put(recordKey(id), data)
	})
}

func (s *BoltStore) Delete(ctx context.Context, collection string, id int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, collection)
		if err != nil {
			return err
		}
		if b.Get(recordKey(id)) == nil {
			return ErrNotFound
		}
		return b.Delete(recordKey(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func recordKey(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}

func matchRecord(rec Record, q Query) bool {
	for field, want := range q.Eq {
		if cast.ToString(rec[field]) != cast.ToString(want) {
			return false
		}
	}
	if q.MatchField != "" && q.Match != "" {
		have := strings.ToLower(cast.ToString(rec[q.MatchField]))
		if !strings.Contains(have, strings.ToLower(q.Match)) {
			return false
		}
	}
	return true
}

// sortRecords orders by a single field.
func sortRecords(records []Record, field string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i][field], records[j][field]
		less := recordFieldLess(a, b)
		if desc {
			return !less && !recordFieldEqual(a, b)
		}
		return less
	})
}

// recordFieldLess compares numerically when both sides parse as
// numbers and as instants when both parse as RFC3339 timestamps,
// lexical otherwise. The timestamp parse is required: the JSON codec
// trims trailing fractional zeros, so mixed-precision timestamps do
// not order correctly as strings ('Z' compares greater than digits).
func recordFieldLess(a, b interface{}) bool {
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return af < bf
	}
	as, bs := cast.ToString(a), cast.ToString(b)
	at, aterr := time.Parse(time.RFC3339Nano, as)
	bt, bterr := time.Parse(time.RFC3339Nano, bs)
	if aterr == nil && bterr == nil {
		return at.Before(bt)
	}
	return as < bs
}

func recordFieldEqual(a, b interface{}) bool {
	return cast.ToString(a) == cast.ToString(b)
}
