// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/cafeforest/cafeforest/forest/utils"
	"github.com/gin-gonic/gin"
	"github.com/uber/h3-go/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Distances offered in the forest view selector.
var distanceChoices = []float64{10, 25, 50, 100, 200, 500}

// Server serves the forest view and the JSON API.
type Server struct {
	shopRepo ShopRepository
	service  *Service
}

// NewServer creates a Server reading shops from shopRepo and clusters from service.
func NewServer(shopRepo ShopRepository, service *Service) *Server {
	return &Server{
		shopRepo: shopRepo,
		service:  service,
	}
}

// Router builds the gin engine with the templates and every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"formatMeters": utils.FormatMeters,
		"formatInt":    func(n int) string { return utils.FormatInt(int64(n)) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.forestView)
	r.GET("/api/clusters", s.getClusters)
	r.GET("/api/shops", s.searchShops)
	r.GET("/api/shops/count", s.countShops)
	r.GET("/api/cells/:cell/shops", s.listShopsInCell)

	return r, nil
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	r, err := s.Router()
	if err != nil {
		return err
	}

	return r.Run(addr)
}

func distanceParam(ctx *gin.Context) (float64, bool) {
	raw := ctx.Query("distance")
	if raw == "" {
		return DefaultDistance, true
	}

	distance, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return distance, true
}

func (s *Server) forestView(ctx *gin.Context) {
	distance, ok := distanceParam(ctx)
	if !ok {
		ctx.String(http.StatusBadRequest, "invalid distance")

		return
	}

	clusters, err := s.service.AnalyzeClusters(ctx.Request.Context(), distance)
	if err != nil {
		if IsInvalidThresholdError(err) {
			ctx.String(http.StatusBadRequest, err.Error())

			return
		}

		log.Printf("analyzing clusters: %v", err)
		ctx.String(http.StatusInternalServerError, "failed to analyze clusters")

		return
	}

	summaries, err := Summarize(clusters)
	if err != nil {
		log.Printf("summarizing clusters: %v", err)
		ctx.String(http.StatusInternalServerError, "failed to summarize clusters")

		return
	}

	ctx.HTML(http.StatusOK, "forest-view.html", gin.H{
		"clusters":        summaries,
		"totalClusters":   len(summaries),
		"currentDistance": distance,
		"distances":       distanceChoices,
	})
}

// ClustersResponse is the body of GET /api/clusters.
type ClustersResponse struct {
	Distance      float64           `json:"distance"`
	TotalClusters int               `json:"total_clusters"`
	Clusters      []*ClusterSummary `json:"clusters"`
}

func (s *Server) getClusters(ctx *gin.Context) {
	distance, ok := distanceParam(ctx)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "distance must be a number"})

		return
	}

	clusters, err := s.service.AnalyzeClusters(ctx.Request.Context(), distance)
	if err != nil {
		if IsInvalidThresholdError(err) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}

		log.Printf("analyzing clusters: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze clusters"})

		return
	}

	summaries, err := Summarize(clusters)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize clusters"})

		return
	}

	ctx.JSON(http.StatusOK, ClustersResponse{
		Distance:      distance,
		TotalClusters: len(summaries),
		Clusters:      summaries,
	})
}

func (s *Server) searchShops(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})

		return
	}

	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})

		return
	}

	shops, err := s.shopRepo.SearchShops(ctx.Query("q"), limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search shops"})

		return
	}

	ctx.JSON(http.StatusOK, shops)
}

func (s *Server) countShops(ctx *gin.Context) {
	count, err := s.shopRepo.CountShops()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count shops"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) listShopsInCell(ctx *gin.Context) {
	cell := h3.Cell(h3.IndexFromString(ctx.Param("cell")))
	if !cell.IsValid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid h3 cell"})

		return
	}

	shops, err := s.shopRepo.ListShopsInCell(cell)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, shops)
}
