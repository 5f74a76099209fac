package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/relay/discovery"
	"github.com/Chyrain/LLMGateway/relay/probe"
)

// ProbeModel serves `POST /relay/models/{id}/probe` (SPEC_FULL.md §8): it
// runs the connectivity probe for one ModelRecord and persists the result.
func ProbeModel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "invalid model id", "type": "validation_error"}})
		return
	}

	m, err := Repo.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": err.Error(), "type": "not_found"}})
		return
	}

	reachable, probeErr := probe.Probe(c.Request.Context(), *m)
	if probeErr != nil {
		reachable = false
	}
	if err := Repo.UpdateConnectStatus(c.Request.Context(), id, reachable); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error(), "type": "internal_error"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reachable": reachable})
}

// ListVendorModels serves `GET /internal/vendors/{vendor}/models` (SPEC_FULL.md
// §8): it runs upstream model discovery for a not-yet-configured vendor so
// an operator can populate a new ModelRecord.
func ListVendorModels(c *gin.Context) {
	vendor := c.Param("vendor")
	apiBase := c.Query("api_base")
	apiKey := c.Query("api_key")
	apiSpec := c.Query("api_spec")

	result := discovery.ListAvailable(c.Request.Context(), vendor, apiSpec, apiBase, apiKey)
	c.JSON(http.StatusOK, result)
}
