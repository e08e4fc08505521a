package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animai/internal/egg"
	"animai/internal/incubator"
)

type MessageRequest struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	EggID       uint          `json:"eggId"`
	Status      egg.Stage     `json:"status"`
	Progress    int           `json:"progress"`
	Personality egg.Archetype `json:"personality"`
	Traits      egg.Scores    `json:"traits"`
}

// POST /api/eggs/:eggId/messages?userId=
func SendMessageHandler(inc *incubator.Incubator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		eggID, ok := pathEggID(c)
		if !ok {
			return
		}
		var req MessageRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			abortWithMessage(c, http.StatusBadRequest, "message is required")
			return
		}
		res, err := inc.HandleMessage(c.Request.Context(), userID, eggID, req.Message)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GET /api/eggs/:eggId/messages?userId=
func ListMessagesHandler(inc *incubator.Incubator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		eggID, ok := pathEggID(c)
		if !ok {
			return
		}
		list, err := inc.History(c.Request.Context(), userID, eggID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/eggs/:eggId/status?userId=
func EggStatusHandler(inc *incubator.Incubator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		eggID, ok := pathEggID(c)
		if !ok {
			return
		}
		e, err := inc.Egg(c.Request.Context(), userID, eggID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, StatusResponse{
			EggID:       e.ID,
			Status:      e.Status,
			Progress:    e.Progress,
			Personality: e.Personality,
			Traits:      e.Scores(),
		})
	}
}

// POST /api/eggs/:eggId/hatch?userId=
func HatchHandler(inc *incubator.Incubator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		eggID, ok := pathEggID(c)
		if !ok {
			return
		}
		pet, err := inc.Hatch(c.Request.Context(), userID, eggID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, pet)
	}
}

// GET /api/pets?userId=
func ListPetsHandler(inc *incubator.Incubator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		pets, err := inc.Pets(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pets)
	}
}
