package ledger

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/storage"
)

// bucketStart returns the unix start of the bucket holding ts.
func bucketStart(ts time.Time, granularity uint64) uint64 {
	unix := ts.Unix()
	if unix < 0 {
		return 0
	}
	if granularity == 0 {
		granularity = 1
	}
	return uint64(unix) / granularity * granularity
}

func utilizationKey(tokenID common.Address, bucket uint64) []byte {
	return storage.Key(tokenID.Bytes(), storage.Uint64Key(bucket))
}

func (t *txn) addUtilization(tokenID common.Address, bucket uint64) error {
	key := utilizationKey(tokenID, bucket)
	var count uint64
	raw, err := t.tx.GetRaw(storage.TokenUtilizationPrefix, key)
	switch {
	case err == nil:
		count = storage.Uint64FromKey(raw)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}
	return t.tx.SetRaw(storage.TokenUtilizationPrefix, key, storage.Uint64Key(count+1))
}

// scanUtilization calls fn for every non-empty bucket starting at or after
// the bucket holding since. Buckets are keyed by their start time, so the
// whole history is walked from the earliest bucket.
func (t *txn) scanUtilization(tokenID common.Address, since time.Time, fn func(bucket, count uint64)) error {
	tk, err := t.token(tokenID)
	if err != nil {
		return err
	}
	from := bucketStart(since, tk.Granularity)
	return t.tx.Iterate(storage.TokenUtilizationPrefix, tokenID.Bytes(), func(k, v []byte) bool {
		bucket := storage.Uint64FromKey(k)
		if bucket < from {
			return true
		}
		if count := storage.Uint64FromKey(v); count > 0 {
			fn(bucket, count)
		}
		return true
	})
}

// UtilizationSince returns the number of votes spent in buckets starting at
// or after the bucket holding since.
func (l *Ledger) UtilizationSince(tokenID common.Address, since time.Time) (uint64, error) {
	var total uint64
	err := l.view(func(t *txn) error {
		return t.scanUtilization(tokenID, since, func(_, count uint64) {
			total += count
		})
	})
	return total, err
}

// WindowCountSince returns the number of distinct non-empty buckets
// starting at or after the bucket holding since.
func (l *Ledger) WindowCountSince(tokenID common.Address, since time.Time) (uint64, error) {
	var windows uint64
	err := l.view(func(t *txn) error {
		return t.scanUtilization(tokenID, since, func(_, _ uint64) {
			windows++
		})
	})
	return windows, err
}
