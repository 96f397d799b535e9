package handlers

import (
	"context"
	"log"
	"net/http"

	"zoningcheck-backend/models"
	"zoningcheck-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PropertyHandler handles HTTP requests for properties
type PropertyHandler struct {
	propertyService *service.PropertyService
	analysisService *service.AnalysisService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *service.PropertyService, analysisService *service.AnalysisService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		analysisService: analysisService,
	}
}

// CreatePropertyRequest represents the request body for creating a property
type CreatePropertyRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	Status         string `json:"status"`
	DisplayAddress string `json:"display_address"`
	Postcode       string `json:"postcode"`
	Municipality   string `json:"municipality"`
}

// CreateProperty handles POST /api/properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	var status models.PropertyStatus
	if req.Status != "" {
		status = models.PropertyStatus(req.Status)
	} else {
		status = models.StatusDraft
	}

	serviceReq := service.CreatePropertyRequest{
		UserID:         userID,
		Status:         status,
		DisplayAddress: req.DisplayAddress,
		Postcode:       req.Postcode,
		Municipality:   req.Municipality,
	}

	result, err := h.propertyService.CreateProperty(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Property,
	})
}

// GetProperty handles GET /api/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid property ID format",
			},
		})
		return
	}

	serviceReq := service.GetPropertyRequest{
		ID: id,
	}

	result, err := h.propertyService.GetProperty(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Property not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Property,
	})
}

// UpdatePropertyRequest represents the request body for updating a property
type UpdatePropertyRequest struct {
	Status         string               `json:"status"`
	DisplayAddress string               `json:"display_address"`
	Postcode       string               `json:"postcode"`
	Municipality   string               `json:"municipality"`
	PlanFileID     *string              `json:"plan_file_id"`
	Designations   []string             `json:"designations"`
	Maatvoeringen  []models.Maatvoering `json:"maatvoeringen"`
	Plan           *models.ResidentPlan `json:"plan"`
}

// UpdateProperty handles PUT /api/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid property ID format",
			},
		})
		return
	}

	getReq := service.GetPropertyRequest{ID: id}
	result, err := h.propertyService.GetProperty(c.Request.Context(), getReq)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Property not found",
			},
		})
		return
	}

	property := result.Property

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.Status != "" {
		property.Status = models.PropertyStatus(req.Status)
	}
	if req.DisplayAddress != "" {
		property.DisplayAddress = req.DisplayAddress
	}
	if req.Postcode != "" {
		property.Postcode = req.Postcode
	}
	if req.Municipality != "" {
		property.Municipality = req.Municipality
	}
	if req.PlanFileID != nil {
		fileID, err := uuid.Parse(*req.PlanFileID)
		if err == nil {
			property.PlanFileID = &fileID
		}
	}
	if req.Designations != nil {
		property.Designations = req.Designations
	}
	if req.Maatvoeringen != nil {
		property.Maatvoeringen = models.Maatvoeringen(req.Maatvoeringen)
	}
	if req.Plan != nil {
		property.Plan = req.Plan
	}

	updateReq := service.UpdatePropertyRequest{
		Property: property,
	}

	updateResult, err := h.propertyService.UpdateProperty(c.Request.Context(), updateReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updateResult.Property,
	})
}

// ListProperties handles GET /api/properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	userIDStr := c.Query("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Valid user_id query parameter is required",
			},
		})
		return
	}

	var status *models.PropertyStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.PropertyStatus(statusStr)
		status = &s
	}

	serviceReq := service.ListPropertiesRequest{
		UserID: userID,
		Status: status,
	}

	result, err := h.propertyService.ListProperties(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Properties,
	})
}

// DeleteProperty handles DELETE /api/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid property ID format",
			},
		})
		return
	}

	serviceReq := service.DeletePropertyRequest{ID: id}

	_, err = h.propertyService.DeleteProperty(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// AnalyzeProperty handles POST /api/properties/:id/analyze
func (h *PropertyHandler) AnalyzeProperty(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid property ID format",
			},
		})
		return
	}

	serviceReq := service.GenerateAssessmentRequest{
		PropertyID: id,
	}

	// Create job (synchronous, fast)
	result, err := h.analysisService.GenerateAssessment(c.Request.Context(), serviceReq)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ANALYSIS_FAILED"
		switch err {
		case service.ErrPropertyNotFound:
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case service.ErrMissingPlanFile:
			status = http.StatusBadRequest
			code = "MISSING_PLAN_FILE"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing
	// Use background context (not request context) to avoid cancellation
	go func() {
		bgCtx := context.Background()
		if err := h.analysisService.ProcessAnalysis(bgCtx, result.JobID); err != nil {
			// Error is stored in job.ErrorMessage; the client polls status
			log.Printf("Analysis job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Analysis job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *PropertyHandler) GetJobStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid job ID format",
			},
		})
		return
	}

	serviceReq := service.GetJobStatusRequest{
		JobID: id,
	}

	result, err := h.analysisService.GetJobStatus(c.Request.Context(), serviceReq)
	if err != nil {
		if err == service.ErrJobNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Analysis job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}
