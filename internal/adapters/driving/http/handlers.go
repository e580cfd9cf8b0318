package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    h.version,
		"uptime_sec": int(time.Since(h.startedAt).Seconds()),
	})
}

// FindHandler serves find-and-retrieve requests.
type FindHandler struct {
	label driving.LabelService
}

// FindRequest is the POST /api/v1/find body.
type FindRequest struct {
	ProductName      string `json:"product_name" binding:"required"`
	Question         string `json:"question" binding:"required"`
	ActiveIngredient string `json:"active_ingredient"`
	Limit            int    `json:"limit" binding:"gte=0,lte=50"`
	// ScoreThreshold is optional. An explicit 0 disables the threshold.
	ScoreThreshold *float64 `json:"score_threshold" binding:"omitempty,gte=0,lte=1"`
	Force          bool     `json:"force"`
}

// Find handles POST /api/v1/find.
func (h *FindHandler) Find(c *gin.Context) {
	var req FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "invalid request payload: "+err.Error())
		return
	}

	result, err := h.label.FindAndRetrieve(c.Request.Context(), domain.FindRequest{
		ProductName:      req.ProductName,
		Question:         req.Question,
		ActiveIngredient: req.ActiveIngredient,
		Limit:            req.Limit,
		ScoreThreshold:   req.ScoreThreshold,
		Force:            req.Force,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, result)
}

// DocumentHandler serves indexed document and cache listings.
type DocumentHandler struct {
	documents driving.DocumentService
}

type documentView struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	Product       string     `json:"product"`
	SourceURL     string     `json:"source_url,omitempty"`
	FileSize      int64      `json:"file_size"`
	NumPages      int        `json:"num_pages"`
	NumChunks     int        `json:"num_chunks"`
	Processed     bool       `json:"processed"`
	CreatedAt     time.Time  `json:"created_at"`
	LastProcessed *time.Time `json:"last_processed,omitempty"`
}

type chunkView struct {
	Index      int    `json:"index"`
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
}

// List handles GET /api/v1/documents[?product=].
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), c.Query("product"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = documentView{
			ID:            docs[i].ID,
			Filename:      docs[i].Filename,
			Product:       docs[i].ProductKey,
			SourceURL:     docs[i].SourceURL,
			FileSize:      docs[i].FileSize,
			NumPages:      docs[i].NumPages,
			NumChunks:     docs[i].NumChunks,
			Processed:     docs[i].Processed,
			CreatedAt:     docs[i].CreatedAt,
			LastProcessed: docs[i].LastProcessed,
		}
	}
	respondOK(c, gin.H{"documents": views, "count": len(views)})
}

// Get handles GET /api/v1/documents/:id.
func (h *DocumentHandler) Get(c *gin.Context) {
	details, err := h.documents.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, details)
}

// Chunks handles GET /api/v1/documents/:id/chunks.
func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.documents.GetChunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]chunkView, len(chunks))
	for i := range chunks {
		views[i] = chunkView{
			Index:      chunks[i].Index,
			PageNumber: chunks[i].PageNumber,
			Content:    chunks[i].Content,
			TokenCount: chunks[i].TokenCount,
		}
	}
	respondOK(c, gin.H{"chunks": views, "count": len(views)})
}

// Cached handles GET /api/v1/cache[?product=].
func (h *DocumentHandler) Cached(c *gin.Context) {
	pdfs, err := h.documents.ListCached(c.Request.Context(), c.Query("product"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if pdfs == nil {
		pdfs = []domain.CachedPDF{}
	}
	respondOK(c, gin.H{"pdfs": pdfs, "count": len(pdfs)})
}
