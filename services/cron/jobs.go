package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coursedeck/coursedeck/model"
)

// CleanupTokenBlacklist removes blacklist entries whose tokens have
// expired on their own; keeping them buys nothing.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired entries", removed))
}

// SweepOrphanedAttachments deletes stored submission files that no
// submission row references anymore. Files can be orphaned when a row
// update succeeds but the delete of the replaced file fails.
func (m *CronManager) SweepOrphanedAttachments() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "sweep_orphaned_attachments"

	if m.store == nil {
		m.logJobComplete(jobName, "No object storage configured, skipped")
		return
	}

	// Both submission files and assignment attachments live in the same
	// bucket; a key referenced by either table is live.
	var urls []string
	if err := m.db.Model(&model.Submission{}).Pluck("submission", &urls).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list submission URLs: %w", err))
		return
	}

	var attachments []string
	if err := m.db.Model(&model.Assignment{}).Where("attachment <> ''").Pluck("attachment", &attachments).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list assignment attachments: %w", err))
		return
	}

	referenced := make(map[string]struct{}, len(urls)+len(attachments))
	for _, u := range urls {
		referenced[u] = struct{}{}
	}
	for _, u := range attachments {
		referenced[u] = struct{}{}
	}

	keys, err := m.store.ListKeys(ctx, "")
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list stored objects: %w", err))
		return
	}

	deleted := 0
	failed := 0
	for _, key := range keys {
		if referencedByURL(referenced, key) {
			continue
		}
		if err := m.store.DeleteKey(ctx, key); err != nil {
			log.Printf("[CRON] Failed to delete orphaned object %s: %v", key, err)
			failed++
			continue
		}
		deleted++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Checked %d objects, deleted %d, failed %d", len(keys), deleted, failed))
}

// referencedByURL reports whether any recorded public URL ends in the
// given object key. URLs embed the key after the bucket segment, so a
// suffix match is sufficient.
func referencedByURL(urls map[string]struct{}, key string) bool {
	suffix := "/" + key
	for u := range urls {
		if len(u) >= len(suffix) && u[len(u)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
