package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/utils/auth"
)

// activityRetention is how long audit rows are kept before the daily purge
const activityRetention = 180 * 24 * time.Hour

// CompletePastEvents marks approved events whose date has passed as completed
func (m *CronManager) CompletePastEvents() {
	const jobName = "complete_past_events"

	result := m.db.Model(&model.Event{}).
		Where("status = ? AND date < ?", model.EventStatusApproved, time.Now()).
		Update("status", model.EventStatusCompleted)

	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("marked %d events completed", result.RowsAffected))
}

// CleanupExpiredTokens drops expired rows from the JWT blacklist
func (m *CronManager) CleanupExpiredTokens() {
	const jobName = "cleanup_expired_tokens"

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(context.Background()); err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, "expired blacklist tokens removed")
}

// PurgeOldActivities removes audit log rows past the retention window
func (m *CronManager) PurgeOldActivities() {
	const jobName = "purge_old_activities"

	cutoff := time.Now().Add(-activityRetention)
	result := m.db.
		Where("created_at < ?", cutoff).
		Delete(&model.Activity{})

	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("purged %d activity rows", result.RowsAffected))
}
