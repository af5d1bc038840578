package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// currentCacheVersion defines the version of the cached timestamp payload.
const currentCacheVersion = 1

// repoTimestamps returns the commit times of one repository, served from the
// activity cache while no ref of the repository moved and the entry is
// younger than CacheTTL.
func (m *Merger) repoTimestamps(ctx context.Context, repoPath string) ([]time.Time, error) {
	if m.Cache == nil {
		return m.Client.GetCommitTimestamps(ctx, repoPath)
	}

	key := m.generateCacheKey(ctx, repoPath)
	if key == "" {
		return m.Client.GetCommitTimestamps(ctx, repoPath)
	}
	if stamps := m.checkCacheHit(key, time.Now()); stamps != nil {
		return stamps, nil
	}
	return m.computeAndStore(ctx, repoPath, key)
}

// checkCacheHit attempts to retrieve and validate a cached result.
func (m *Merger) checkCacheHit(key string, now time.Time) []time.Time {
	data, version, ts, err := m.Cache.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	if m.CacheTTL > 0 && now.Sub(time.Unix(ts, 0)) > m.CacheTTL {
		return nil
	}
	var secs []int64
	if err := json.Unmarshal(data, &secs); err != nil {
		return nil
	}
	stamps := make([]time.Time, len(secs))
	for i, s := range secs {
		stamps[i] = time.Unix(s, 0)
	}
	return stamps
}

// computeAndStore reads the timestamps from git and stores them in the cache.
func (m *Merger) computeAndStore(ctx context.Context, repoPath, key string) ([]time.Time, error) {
	stamps, err := m.Client.GetCommitTimestamps(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	secs := make([]int64, len(stamps))
	for i, t := range stamps {
		secs[i] = t.Unix()
	}
	if data, err := json.Marshal(secs); err == nil {
		_ = m.Cache.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return stamps, nil
}

// generateCacheKey identifies a repository state from HEAD and every ref, the
// same set git log --all walks. It returns "" when the refs cannot be read,
// which bypasses the cache.
func (m *Merger) generateCacheKey(ctx context.Context, repoPath string) string {
	state, err := m.Client.GetRefState(ctx, repoPath)
	if err != nil || state == "" {
		return ""
	}
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte("timestamps:"+repoPath+"\n"+state)))
}
