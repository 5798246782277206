package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/catalog"
	"github.com/kozaktomas/makeup-coach/internal/config"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config          *config.Config
	analyzer        *makeup.Analyzer
	catalog         catalog.Source
	analysesEnabled bool
	log             *zap.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, analyzer *makeup.Analyzer, source catalog.Source, analysesEnabled bool, log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		config:          cfg,
		analyzer:        analyzer,
		catalog:         source,
		analysesEnabled: analysesEnabled,
		log:             log,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Regions           []string   `json:"regions"`
	Categories        []string   `json:"categories"`
	TopN              int        `json:"top_n"`
	DefaultConfidence float64    `json:"default_confidence"`
	LandmarkCount     int        `json:"landmark_count"`
	MaxImageSize      int        `json:"max_image_size"`
	Stores            StoresInfo `json:"stores"`
}

// StoresInfo tells clients which storage backends are active.
type StoresInfo struct {
	Progress string `json:"progress"`
	Catalog  string `json:"catalog"`
	Analyses bool   `json:"analyses"`
}

// Get returns the effective configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context(), "")
	if err != nil {
		h.log.Error("failed to load catalog", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	regions := h.analyzer.Regions()
	names := make([]string, len(regions))
	for i, region := range regions {
		names[i] = region.Name
	}

	opts := h.analyzer.Options()
	respondJSON(w, http.StatusOK, ConfigResponse{
		Regions:           names,
		Categories:        catalog.Categories(products),
		TopN:              opts.TopN,
		DefaultConfidence: opts.DefaultConfidence,
		LandmarkCount:     opts.LandmarkCount,
		MaxImageSize:      h.config.Analysis.MaxImageSize,
		Stores: StoresInfo{
			Progress: h.config.Progress.Store,
			Catalog:  h.config.Catalog.Source,
			Analyses: h.analysesEnabled,
		},
	})
}

// Regions returns the facial region definitions in analysis order.
func (h *ConfigHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions := h.analyzer.Regions()
	if regions == nil {
		regions = []facemesh.Region{}
	}
	respondJSON(w, http.StatusOK, regions)
}
