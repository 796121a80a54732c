package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/services"
)

type SearchHandler struct {
	service services.SearchService
}

func NewSearchHandler(service services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// @Summary      Classify free text
// @Description  Returns a memoized classification; 200 on cache hit, 201 when the classifier was called
// @Tags         Search
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /search/ [post]
func (h *SearchHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}

	var req struct {
		InputText string `json:"input_text" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Classify(c.Request.Context(), userID, req.InputText)
	if err != nil {
		log.Printf("[search] classify failed for user_id=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Classification failed"})
		return
	}

	status := http.StatusCreated
	if result.Cached {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"output": result.Output})
}
