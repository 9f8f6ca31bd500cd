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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterahq/cartera/internal/apierror"
	"github.com/carterahq/cartera/internal/telemetry"
	"github.com/carterahq/cartera/model"
)

var tracer = otel.Tracer("cartera.dispatch")

// ProcessClientBatch resolves every imported client of a campaign submission
// to a notification policy and its attachments. The whole batch is served
// from exactly one threshold fetch and one bulk attachment-rule resolution,
// whatever the client count; per-client resolution is pure in-memory work.
//
// An empty threshold set is a valid configuration: all clients come back
// unassigned. A store failure aborts the batch with no partial assignment, so
// a degraded policy store can never cause a half-notified campaign.
func (c *Cartera) ProcessClientBatch(ctx context.Context, tenantID string, clients []model.Client) ([]model.ClientAssignment, error) {
	ctx, span := tracer.Start(ctx, "Processing Client Batch")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", tenantID),
		attribute.Int("batch.client_count", len(clients)),
	)

	thresholds, err := c.ActiveThresholds(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrUpstreamUnavailable, "threshold store unavailable, batch aborted", err)
	}

	assignments := make([]model.ClientAssignment, len(clients))
	assigned := 0
	for i := range clients {
		assignments[i] = model.ClientAssignment{Client: clients[i]}
		if match := model.ResolveThreshold(thresholds, clients[i].TotalDaysOverdue); match != nil {
			assignments[i].ThresholdID = match.ThresholdID
			assignments[i].TemplateID = match.TemplateID
			assignments[i].Channel = match.Channel
			assigned++
		}
	}

	telemetry.ClientsAssigned.Add(float64(assigned))
	telemetry.ClientsUnassigned.Add(float64(len(clients) - assigned))

	if assigned == 0 {
		return assignments, nil
	}

	rules, err := c.datasource.GetActiveAttachmentRules(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrUpstreamUnavailable, "attachment rule store unavailable, batch aborted", err)
	}

	resolved := model.ResolveAttachmentsBulk(rules, assignments)
	for i := range assignments {
		if !assignments[i].Assigned() {
			continue
		}
		assignments[i].Attachments = resolved[assignments[i].Client.NIT]
	}

	return assignments, nil
}
