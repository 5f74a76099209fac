package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/helper"
)

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ListModels serves `GET /v1/models`: enabled ModelRecords plus a synthetic
// "auto" entry when at least one enabled model exists (spec.md §6).
func ListModels(c *gin.Context) {
	records, err := Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error(), "type": "internal_error"}})
		return
	}

	now := helper.GetTimestamp()
	var data []modelEntry
	var anyEnabled bool
	for _, m := range records {
		if m.Status != 1 {
			continue
		}
		anyEnabled = true
		data = append(data, modelEntry{ID: m.ModelName, Object: "model", Created: now, OwnedBy: m.Vendor})
	}
	if anyEnabled {
		data = append([]modelEntry{{ID: "auto", Object: "model", Created: now, OwnedBy: "gateway"}}, data...)
	}

	c.JSON(http.StatusOK, gin.H{"object": "list", "data": data})
}
