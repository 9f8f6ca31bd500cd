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
	"github.com/carterahq/cartera/internal/apierror"
)

func (a Api) CreateThreshold(c *gin.Context) {
	var newThreshold model2.CreateThreshold
	if err := c.ShouldBindJSON(&newThreshold); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newThreshold.ValidateCreateThreshold(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	threshold := newThreshold.ToThreshold()
	overlaps, err := a.cartera.CreateThreshold(c.Request.Context(), threshold)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"threshold": threshold,
		"overlaps":  overlaps,
	})
}

func (a Api) GetActiveThresholds(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	resp, err := a.cartera.ActiveThresholds(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) DisableThreshold(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id/:threshold_id"})
		return
	}
	thresholdID, passed := c.Params.Get("threshold_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold_id is required. pass it in the route /:tenant_id/:threshold_id"})
		return
	}

	if err := a.cartera.DisableThreshold(c.Request.Context(), tenantID, thresholdID); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disabled"})
}

func (a Api) CreateAttachmentRule(c *gin.Context) {
	var newRule model2.CreateAttachmentRule
	if err := c.ShouldBindJSON(&newRule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newRule.ValidateCreateAttachmentRule(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	rule := newRule.ToAttachmentRule()
	if err := a.cartera.CreateAttachmentRule(c.Request.Context(), rule); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (a Api) GetAttachmentRules(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	resp, err := a.cartera.ActiveAttachmentRules(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
