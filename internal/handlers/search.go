package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vibecheck/internal/models"
)

// Searcher answers suggestion queries. It never fails.
type Searcher interface {
	Search(ctx context.Context, query string) []models.Song
}

// SearchResponse represents the response for search results
type SearchResponse struct {
	Results []models.Song `json:"results"`
	Query   string        `json:"query"` // Echo back the query for reference
}

// SearchHandler handles suggestion searches
type SearchHandler struct {
	searcher Searcher
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search handles GET /api/v1/search?q=
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	results := h.searcher.Search(c.Request.Context(), query)
	if results == nil {
		results = []models.Song{}
	}

	c.JSON(http.StatusOK, SearchResponse{
		Results: results,
		Query:   query,
	})
}
