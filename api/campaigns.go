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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/carterahq/cartera/api/model"
	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/internal/apierror"
	"github.com/carterahq/cartera/internal/schedule"
)

func (a Api) DispatchCampaign(c *gin.Context) {
	var newDispatch model2.DispatchCampaign
	if err := c.ShouldBindJSON(&newDispatch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newDispatch.ValidateDispatchCampaign(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	execution, err := a.cartera.StartDispatchRun(c.Request.Context(), newDispatch.TenantID, newDispatch.CampaignName, newDispatch.ToClients())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, execution)
}

func (a Api) ScheduleCampaign(c *gin.Context) {
	var req model2.ScheduleCampaign
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateScheduleCampaign(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	cfg, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Timezone == "" {
		req.Timezone = cfg.Dispatch.DefaultTimezone
	}

	scheduler, err := schedule.NewCampaignScheduler(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	name, err := scheduler.ScheduleDispatch(c.Request.Context(), schedule.CampaignTrigger{
		TenantID:    req.TenantID,
		ExecutionID: req.ExecutionID,
		Timezone:    req.Timezone,
	}, req.RunAt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"schedule_name": name,
		"execution_id":  req.ExecutionID,
		"timezone":      req.Timezone,
	})
}

func (a Api) CancelScheduledCampaign(c *gin.Context) {
	executionID, passed := c.Params.Get("execution_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution_id is required. pass it in the route /:execution_id"})
		return
	}

	scheduler, err := schedule.NewCampaignScheduler(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := scheduler.CancelDispatch(c.Request.Context(), executionID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"execution_id": executionID})
}

func (a Api) GetExecution(c *gin.Context) {
	executionID, passed := c.Params.Get("execution_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution_id is required. pass it in the route /:execution_id"})
		return
	}

	resp, err := a.cartera.GetExecution(c.Request.Context(), executionID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetExecutionStats(c *gin.Context) {
	executionID, passed := c.Params.Get("execution_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution_id is required. pass it in the route /:execution_id/stats"})
		return
	}

	stats, err := a.cartera.ReconstructExecutionStats(c.Request.Context(), executionID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (a Api) GetExecutionAuditLog(c *gin.Context) {
	executionID, passed := c.Params.Get("execution_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution_id is required. pass it in the route /:execution_id/audit-log"})
		return
	}

	entries, err := a.cartera.ExecutionAuditLog(c.Request.Context(), executionID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (a Api) GetControlTower(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	snapshot, err := a.cartera.ControlTowerSnapshot(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (a Api) GetSchedulerLock(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	status, err := a.cartera.SchedulerLockStatus(c.Request.Context(), tenantID)
	if err != nil {
		// The lock panel never reports unlocked on a read failure.
		c.JSON(http.StatusOK, status)
		return
	}

	c.JSON(http.StatusOK, status)
}
