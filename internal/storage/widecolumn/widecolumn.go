// Package widecolumn is the wide-column backend adapter: the same
// three-layer contract as internal/storage/memory and
// internal/storage/sqlstore, modeled the way spec.md §4.7 describes a
// wide-column store — a single "data" table keyed by (partition, sort)
// with prefix scans on sort, plus a separate event log table keyed by
// event id.
//
// No Cassandra/Bigtable/DynamoDB client appears anywhere in the
// example pack; github.com/redis/go-redis/v9 is the closest real
// partition-oriented store any example repo actually depends on, so
// the (partition, sort) data table is emulated with one Redis sorted
// set holding the composite "partition\x00sort" keys in lexicographic
// order (dataIndexKey) alongside one hash holding the corresponding
// payloads (dataPayloadKey). A prefix scan on sort within a partition
// is a ZRANGEBYLEX bound on "partition\x00sortPrefix" .. "partition\
// x00sortPrefix\xff", exactly the way a real wide-column store answers
// a row-range query within a partition. Cross-partition operations
// (AddCandidates touching one election, DeleteUser touching every
// ballot) are pipelined rather than transactional, matching genuine
// wide-column stores, which do not offer cross-partition ACID either.
package widecolumn

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kv-shepherd.io/shepherd/internal/storage"
)

const (
	// dataIndexKey is the sorted set holding every composite
	// (partition, sort) key the data table contains, all at score 0 so
	// ZRANGEBYLEX orders members purely by byte value.
	dataIndexKey = "voting:data:index"
	// dataPayloadKey is the hash mapping each composite key to its
	// JSON-encoded row, the payload half of the single data table.
	dataPayloadKey = "voting:data:payload"

	// sep separates partition from sort key, and sort-key components
	// from each other, inside a composite key. A partition or sort
	// component is always our own generated name; none contain \x00,
	// so sep can never be mistaken for part of a name during a prefix
	// scan.
	sep = "\x00"

	partitionUsers        = "users"
	partitionUsersByEmail = "users_by_email"
	partitionElections    = "elections"
	partitionCandidates   = "candidates"
	partitionVoters       = "voters"
	partitionBallots      = "ballots"

	keyEventSeq   = "voting:events:seq"
	keyEventData  = "voting:events:data"  // hash: eventId -> json(envelope)
	keyEventOrder = "voting:events:order" // zset: member eventId, score eventId
	keySyncCursor = "voting:sync:last_synced"
)

// compositeKey builds the single string stored in both the index zset
// and the payload hash for a (partition, sort) row.
func compositeKey(partition, sort string) string {
	return partition + sep + sort
}

// candidateSort, voterSort and ballotSort build the sort half of a row
// scoped to one election: electionName first so a prefix scan for
// "every row in this election" is a single ZRANGEBYLEX bound.
func candidateSort(electionName, name string) string { return electionName + sep + name }
func voterSort(electionName, name string) string     { return electionName + sep + name }
func ballotSort(electionName, name string) string     { return electionName + sep + name }

// prefixBounds returns the ZRANGEBYLEX Min/Max bounds that match every
// composite key beginning with prefix.
func prefixBounds(prefix string) (min, max string) {
	return "[" + prefix, "[" + prefix + "\xff"
}

// Store is the widecolumn backend's Triple implementation.
type Store struct {
	rdb *redis.Client
}

// New wraps an already-connected client. Endpoint/region resolution
// (config.WideColumnConfig) stays in cmd/server, mirroring the sql
// backend's split between pool construction and pool use.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Triple returns this store's EventLog, CommandModel and QueryModel,
// all backed by the same client.
func (s *Store) Triple() storage.Triple {
	return storage.Triple{Log: s, Command: s, Query: s}
}

// Ping verifies connectivity, analogous to sqlstore's pool.Ping at
// boot time.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping widecolumn store: %w", err)
	}
	return nil
}

// putRow upserts a (partition, sort) row: the index zset records the
// composite key for prefix scans, the payload hash records its value.
func (s *Store) putRow(ctx context.Context, partition, sort string, payload []byte) error {
	key := compositeKey(partition, sort)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, dataIndexKey, redis.Z{Score: 0, Member: key})
		pipe.HSet(ctx, dataPayloadKey, key, payload)
		return nil
	})
	return err
}

// getRow reads one row's payload, reporting ok=false if absent.
func (s *Store) getRow(ctx context.Context, partition, sort string) (payload []byte, ok bool, err error) {
	key := compositeKey(partition, sort)
	raw, err := s.rdb.HGet(ctx, dataPayloadKey, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

// deleteRow removes one row from both the index and the payload hash.
func (s *Store) deleteRow(ctx context.Context, partition, sort string) error {
	key := compositeKey(partition, sort)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, dataIndexKey, key)
		pipe.HDel(ctx, dataPayloadKey, key)
		return nil
	})
	return err
}

// scanPrefix performs the prefix scan on sort that spec.md §4.7
// requires: every composite key in partition whose sort half begins
// with sortPrefix, in lexicographic (sort) order, with its payload.
func (s *Store) scanPrefix(ctx context.Context, partition, sortPrefix string) ([][]byte, error) {
	prefix := partition + sep + sortPrefix
	min, max := prefixBounds(prefix)
	keys, err := s.rdb.ZRangeByLex(ctx, dataIndexKey, &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("prefix scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := s.rdb.HMGet(ctx, dataPayloadKey, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch rows for prefix %s: %w", prefix, err)
	}
	out := make([][]byte, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue // row deleted between the index scan and the hash read
		}
		out = append(out, []byte(str))
	}
	return out, nil
}

// countPrefix is scanPrefix's cardinality-only counterpart, used where
// a caller only needs a count (e.g. CandidateCount).
func (s *Store) countPrefix(ctx context.Context, partition, sortPrefix string) (int, error) {
	prefix := partition + sep + sortPrefix
	min, max := prefixBounds(prefix)
	n, err := s.rdb.ZLexCount(ctx, dataIndexKey, min, max).Result()
	if err != nil {
		return 0, fmt.Errorf("count prefix %s: %w", prefix, err)
	}
	return int(n), nil
}

var (
	_ storage.EventLog     = (*Store)(nil)
	_ storage.CommandModel = (*Store)(nil)
	_ storage.QueryModel   = (*Store)(nil)
	_ storage.Mutator      = (*Store)(nil)
)
