package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/constants"
	"github.com/kozaktomas/makeup-coach/internal/database"
	"github.com/kozaktomas/makeup-coach/internal/facemesh"
	"github.com/kozaktomas/makeup-coach/internal/imaging"
	"github.com/kozaktomas/makeup-coach/internal/makeup"
	"github.com/kozaktomas/makeup-coach/internal/palette"
)

// multipartOverhead leaves room for form fields and part headers next to the image.
const multipartOverhead = constants.MaxLandmarksFieldSize + 64<<10

// AnalysesHandler runs and stores makeup analyses.
type AnalysesHandler struct {
	analyzer     *makeup.Analyzer
	store        database.AnalysisWriter // nil when storage is disabled
	maxImageSize int
	log          *zap.Logger
}

// NewAnalysesHandler creates a new analyses handler. store may be nil.
func NewAnalysesHandler(analyzer *makeup.Analyzer, store database.AnalysisWriter, maxImageSize int, log *zap.Logger) *AnalysesHandler {
	return &AnalysesHandler{
		analyzer:     analyzer,
		store:        store,
		maxImageSize: maxImageSize,
		log:          log,
	}
}

// AnalysisResponse is returned for an analyzed frame.
type AnalysisResponse struct {
	ID     string         `json:"id,omitempty"`
	Result *makeup.Result `json:"result"`
}

// SkippedResponse is returned when the frame had nothing to analyze.
type SkippedResponse struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

// analysisRequest is the parsed multipart form.
type analysisRequest struct {
	image  []byte
	face   facemesh.Face
	userID string
}

// parseAnalysisRequest reads the form fields. On failure it returns the HTTP status to send.
func parseAnalysisRequest(w http.ResponseWriter, r *http.Request) (*analysisRequest, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, http.StatusRequestEntityTooLarge, errors.New("request too large")
		}
		return nil, http.StatusBadRequest, errors.New("failed to parse multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("image is required")
	}
	defer file.Close()
	if header.Size > constants.MaxUploadSize {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("image exceeds %d bytes", constants.MaxUploadSize)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("failed to read image")
	}

	landmarksField := r.FormValue("landmarks")
	if landmarksField == "" {
		return nil, http.StatusBadRequest, errors.New("landmarks is required")
	}
	if len(landmarksField) > constants.MaxLandmarksFieldSize {
		return nil, http.StatusRequestEntityTooLarge, errors.New("landmarks field too large")
	}
	var landmarks []facemesh.Landmark
	if err := json.Unmarshal([]byte(landmarksField), &landmarks); err != nil {
		return nil, http.StatusBadRequest, errors.New("landmarks must be a JSON array of {x,y} points")
	}

	req := &analysisRequest{
		image:  data,
		face:   facemesh.Face{Landmarks: landmarks},
		userID: strings.TrimSpace(r.FormValue("user_id")),
	}

	if s := r.FormValue("confidence"); s != "" {
		c, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(c) || c < 0 || c > 1 {
			return nil, http.StatusBadRequest, errors.New("confidence must be a number within [0,1]")
		}
		req.face.Confidence = &c
	}

	return req, http.StatusOK, nil
}

// Create analyzes an uploaded frame and stores the result when storage is enabled.
func (h *AnalysesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, status, err := parseAnalysisRequest(w, r)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}
	if err := facemesh.ValidateLandmarks(req.face.Landmarks, h.analyzer.Options().LandmarkCount); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame, err := imaging.Decode(req.image, h.maxImageSize)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrUnsupportedFormat):
			respondError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, imaging.ErrTooManyPixels):
			respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			respondError(w, http.StatusBadRequest, "failed to decode image")
		}
		return
	}
	req.face.Landmarks = facemesh.ClampToFrame(req.face.Landmarks, frame.Width(), frame.Height())

	result, err := h.analyzer.AnalyzeImage(frame.Image, req.face)
	if err != nil {
		switch {
		case makeup.IsSkippable(err):
			h.log.Debug("skipping frame", zap.String("reason", err.Error()))
			respondJSON(w, http.StatusOK, SkippedResponse{Skipped: true, Reason: err.Error()})
		case errors.Is(err, facemesh.ErrInvalidLandmarkIndex), errors.Is(err, palette.ErrOutOfBounds):
			h.log.Warn("landmarks do not fit the image", zap.Error(err))
			respondError(w, http.StatusUnprocessableEntity, "landmarks do not fit the image")
		default:
			h.log.Error("analysis failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	response := AnalysisResponse{Result: result}
	if h.store != nil {
		stored := &database.StoredAnalysis{
			UserID:     req.userID,
			Width:      frame.OriginalWidth,
			Height:     frame.OriginalHeight,
			Format:     frame.Format,
			Confidence: result.Confidence,
			Result:     result,
		}
		if err := h.store.SaveAnalysis(r.Context(), stored); err != nil {
			h.log.Error("failed to store analysis", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to store analysis")
			return
		}
		response.ID = stored.ID
	}

	respondJSON(w, http.StatusOK, response)
}

// Get returns a stored analysis.
func (h *AnalysesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "analysis storage is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	analysis, err := h.store.GetAnalysis(r.Context(), id)
	if err != nil {
		h.log.Error("failed to load analysis", zap.String("id", sanitizeForLog(id)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if analysis == nil {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// ListByUser returns a user's newest analyses.
func (h *AnalysesHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "analysis storage is not configured")
		return
	}

	userID := userIDParam(r)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing user ID")
		return
	}
	limit, err := parseLimit(r, constants.DefaultAnalysisListLimit, constants.MaxAnalysisListLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	analyses, err := h.store.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("failed to list analyses", zap.String("user_id", sanitizeForLog(userID)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []database.StoredAnalysis{}
	}

	respondJSON(w, http.StatusOK, analyses)
}
