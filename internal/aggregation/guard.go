package aggregation

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

const guardBucket = "degradation_guard_index"

// Guard refuses to let a new artifact overwrite a materially richer prior
// one, matching RegistryBuilder.save()'s degradation guard: an absolute
// refusal when the new count hits zero while the old count didn't, and a
// configurable warn-or-refuse ratio otherwise.
type Guard struct {
	db *bolt.DB
}

// OpenGuard opens (creating if needed) the bbolt index the guard uses to
// remember each scope's last-known-good finding count.
func OpenGuard(path string) (*Guard, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, omnierrors.IOError(err, "opening degradation guard index at "+path)
	}
	return &Guard{db: db}, nil
}

// Close releases the underlying bbolt handle.
func (g *Guard) Close() error {
	return g.db.Close()
}

// Decision is the guard's verdict for one scope.
type Decision struct {
	Allowed    bool
	Warning    string
	OldCount   int
	NewCount   int
}

// Check compares newCount against the last recorded count for scope and
// decides whether the write should proceed. maxDropRatio is the minimum
// fraction of the old count the new count must retain to be allowed
// (e.g. 0.5 means dropping below half of the old count is refused with a
// warning). force lets the write through past both the ratio refusal and
// the absolute zero-guard; the ratio warning is still reported.
func (g *Guard) Check(scope string, newCount int, maxDropRatio float64, force bool) (Decision, error) {
	oldCount, err := g.lastCount(scope)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Allowed: true, OldCount: oldCount, NewCount: newCount}

	if oldCount > 0 && newCount == 0 && !force {
		d.Allowed = false
		d.Warning = "refusing to overwrite a non-empty prior artifact with an empty one"
		return d, nil
	}

	if oldCount > 0 && maxDropRatio > 0 {
		ratio := float64(newCount) / float64(oldCount)
		if ratio < maxDropRatio {
			d.Warning = "new result count dropped below the configured retention ratio"
			if !force {
				d.Allowed = false
			}
		}
	}

	return d, nil
}

// CheckOrError is Check wrapped to return a PolicyError when the guard
// refuses the write, so callers can short-circuit with IsPolicyCode.
func (g *Guard) CheckOrError(scope string, newCount int, maxDropRatio float64, force bool) error {
	d, err := g.Check(scope, newCount, maxDropRatio, force)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return omnierrors.PolicyErrorf("degradation_guard", "%s (scope=%s old=%d new=%d)", d.Warning, scope, d.OldCount, d.NewCount)
	}
	return nil
}

// Commit records newCount as scope's last-known-good count, to be
// compared against on the next run. Callers should only Commit after the
// corresponding artifact write has actually succeeded.
func (g *Guard) Commit(scope string, newCount int) error {
	return g.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(guardBucket))
		if err != nil {
			return err
		}
		data, err := json.Marshal(newCount)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(scope), data)
	})
}

func (g *Guard) lastCount(scope string) (int, error) {
	var count int
	err := g.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(guardBucket))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(scope))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &count)
	})
	if err != nil {
		return 0, omnierrors.DataError(err, "reading degradation guard index for "+scope)
	}
	return count, nil
}
