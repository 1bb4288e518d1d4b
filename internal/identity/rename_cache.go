package identity

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/Pantheon-LadderWorks/omni-governance/internal/gitutil"
	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

const renameBucket = "project_path_history"

// RenameCache resolves a project directory's historical paths within a
// repository, bbolt-backed so repeated scans don't re-run `git log
// --follow` on every pass. A project that was renamed or moved keeps the
// same minted UUID only if its key is derived from something stable (the
// GitHub URL); this cache lets callers notice the rename happened at all,
// for drift reporting.
type RenameCache struct {
	db *bolt.DB
}

// OpenRenameCache opens (creating if needed) a bbolt database at path.
func OpenRenameCache(path string) (*RenameCache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, omnierrors.IOError(err, "opening rename cache at "+path)
	}
	return &RenameCache{db: db}, nil
}

// Close releases the underlying bbolt handle.
func (c *RenameCache) Close() error {
	return c.db.Close()
}

// HistoricalPaths returns every path a file has had in repo's history,
// following renames, using the cache when available.
func (c *RenameCache) HistoricalPaths(ctx context.Context, repo *gitutil.Repo, path string) ([]string, error) {
	cacheKey := repo.Dir + "\x00" + path

	if cached, ok := c.get(cacheKey); ok {
		return cached, nil
	}

	paths, err := repo.LogFollow(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := c.set(cacheKey, paths); err != nil {
		return paths, err
	}
	return paths, nil
}

func (c *RenameCache) get(key string) ([]string, bool) {
	var result []string
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renameBucket))
		if bucket == nil {
			return bolt.ErrBucketNotFound
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return bolt.ErrBucketNotFound
		}
		return json.Unmarshal(data, &result)
	})
	return result, err == nil
}

func (c *RenameCache) set(key string, paths []string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(renameBucket))
		if err != nil {
			return err
		}
		data, err := json.Marshal(paths)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
}
