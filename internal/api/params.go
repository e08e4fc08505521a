package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryUserID reads the required userId query parameter.
func queryUserID(c *gin.Context) (uint, bool) {
	raw := c.Query("userId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if raw == "" || err != nil || id == 0 {
		abortWithMessage(c, http.StatusBadRequest, "userId is required")
		return 0, false
	}
	return uint(id), true
}

// pathEggID reads :eggId; 0 means the user's active egg.
func pathEggID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("eggId"), 10, 64)
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, "eggId must be a number")
		return 0, false
	}
	return uint(id), true
}
