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

	"github.com/carterahq/cartera/model"
)

// CreateAttachmentRule persists a new attachment rule for a tenant.
func (c *Cartera) CreateAttachmentRule(ctx context.Context, rule *model.AttachmentRule) error {
	ctx, span := tracer.Start(ctx, "Creating Attachment Rule")
	defer span.End()

	return c.datasource.CreateAttachmentRule(ctx, rule)
}

// ActiveAttachmentRules returns a tenant's active attachment rules ordered by
// display order.
func (c *Cartera) ActiveAttachmentRules(ctx context.Context, tenantID string) ([]model.AttachmentRule, error) {
	ctx, span := tracer.Start(ctx, "Fetching Attachment Rules")
	defer span.End()

	return c.datasource.GetActiveAttachmentRules(ctx, tenantID)
}
