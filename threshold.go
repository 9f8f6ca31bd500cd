/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cartera

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carterahq/cartera/model"
)

const thresholdCacheTTL = 1 * time.Minute

func thresholdCacheKey(tenantID string) string {
	return fmt.Sprintf("cartera:thresholds:%s", tenantID)
}

// CreateThreshold persists a new notification threshold for a tenant. Before
// writing it checks the active set for intervals overlapping the new one and
// returns them so the caller can surface a data-quality warning; overlap does
// not block the write because resolution stays deterministic via first-match.
func (c *Cartera) CreateThreshold(ctx context.Context, threshold *model.NotificationThreshold) ([]model.NotificationThreshold, error) {
	ctx, span := tracer.Start(ctx, "Creating Notification Threshold")
	defer span.End()

	overlaps, err := c.datasource.FindOverlappingThresholds(ctx, threshold.TenantID, threshold.DaysFrom, threshold.DaysTo)
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 {
		logrus.Warnf("threshold %q overlaps %d existing threshold(s) for tenant %s", threshold.Name, len(overlaps), threshold.TenantID)
	}

	if err := c.datasource.CreateThreshold(ctx, threshold); err != nil {
		return nil, err
	}
	c.invalidateThresholdCache(ctx, threshold.TenantID)
	return overlaps, nil
}

// ActiveThresholds returns a tenant's active threshold set sorted by ascending
// DaysFrom, serving from the snapshot cache when possible. Threshold sets are
// small and slow-changing, so a short TTL keeps repeated campaign submissions
// from hitting the store.
func (c *Cartera) ActiveThresholds(ctx context.Context, tenantID string) ([]model.NotificationThreshold, error) {
	ctx, span := tracer.Start(ctx, "Fetching Active Thresholds")
	defer span.End()

	var thresholds []model.NotificationThreshold
	if c.cache != nil {
		if err := c.cache.Get(ctx, thresholdCacheKey(tenantID), &thresholds); err == nil && thresholds != nil {
			return thresholds, nil
		}
	}

	thresholds, err := c.datasource.GetActiveThresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	model.SortThresholds(thresholds)

	if c.cache != nil {
		if err := c.cache.Set(ctx, thresholdCacheKey(tenantID), thresholds, thresholdCacheTTL); err != nil {
			logrus.Warnf("failed to cache threshold snapshot for tenant %s: %v", tenantID, err)
		}
	}
	return thresholds, nil
}

// DisableThreshold soft-deletes a threshold and drops the tenant's cached
// snapshot.
func (c *Cartera) DisableThreshold(ctx context.Context, tenantID, thresholdID string) error {
	ctx, span := tracer.Start(ctx, "Disabling Notification Threshold")
	defer span.End()

	if err := c.datasource.DisableThreshold(ctx, tenantID, thresholdID); err != nil {
		return err
	}
	c.invalidateThresholdCache(ctx, tenantID)
	return nil
}

func (c *Cartera) invalidateThresholdCache(ctx context.Context, tenantID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, thresholdCacheKey(tenantID)); err != nil {
		logrus.Warnf("failed to invalidate threshold snapshot for tenant %s: %v", tenantID, err)
	}
}
