package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/arjun/cutoff-finder/internal/ai"
	"github.com/arjun/cutoff-finder/internal/analyzer"
	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/exams"
	"github.com/arjun/cutoff-finder/internal/query"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// maxUploadBytes bounds dataset and PDF uploads.
const maxUploadBytes = 64 << 20

type Server struct {
	Registry    *exams.Registry
	Store       *dataset.Store
	Engine      *query.Engine
	Comparator  *query.Comparator
	Recommender *query.Recommender
	AI          *ai.Client
	Echo        *echo.Echo

	dataDir string
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(registry *exams.Registry, store *dataset.Store, dataDir string) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	aiClient := ai.NewClient(os.Getenv("GROQ_API_KEY"), os.Getenv("GROQ_MODEL"))

	s := &Server{
		Registry:    registry,
		Store:       store,
		Engine:      query.NewEngine(store),
		Comparator:  query.NewComparator(store),
		Recommender: query.NewRecommender(store),
		AI:          aiClient,
		Echo:        e,
		dataDir:     dataDir,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/exams", s.handleListExams)
	api.GET("/cutoffs", s.handleQueryCutoffs)
	api.GET("/cutoffs/options", s.handleCutoffOptions)
	api.POST("/cutoffs/compare", s.handleCompare)
	api.POST("/cutoffs/recommend", s.handleRecommend)

	// Admin Routes (dataset replacement & analysis)
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.PUT("/datasets/:examId", s.handleReplaceDataset)
	admin.POST("/datasets/:examId/invalidate", s.handleInvalidateDataset)
	admin.POST("/analyze-pdf", s.handleAnalyzePDF)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListExams(c echo.Context) error {
	all := s.Registry.All()

	grouped := make(map[string][]exams.ExamConfig)
	var order []string
	for _, exam := range all {
		if _, ok := grouped[exam.Category]; !ok {
			order = append(order, exam.Category)
		}
		grouped[exam.Category] = append(grouped[exam.Category], exam)
	}

	groups := make([]map[string]interface{}, 0, len(order))
	for _, cat := range order {
		groups = append(groups, map[string]interface{}{
			"category": cat,
			"exams":    grouped[cat],
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":  len(all),
		"groups": groups,
	})
}

func (s *Server) handleQueryCutoffs(c echo.Context) error {
	examID := c.QueryParam("examId")
	if examID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "examId param required"})
	}

	criteria := query.Criteria{
		Search:       c.QueryParam("search"),
		CourseCode:   c.QueryParam("course"),
		CategoryCode: c.QueryParam("category"),
		SeatType:     c.QueryParam("seatType"),
	}
	if v, err := strconv.ParseFloat(c.QueryParam("minPercentile"), 64); err == nil {
		criteria.MinPercentile = &v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("maxPercentile"), 64); err == nil {
		criteria.MaxPercentile = &v
	}

	page := 1
	pageSize := query.DefaultPageSize
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 500 {
		pageSize = l
	}

	result, err := s.Engine.Query(examID, criteria, page, pageSize)
	if err != nil {
		return s.queryError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleCutoffOptions(c echo.Context) error {
	examID := c.QueryParam("examId")
	if examID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "examId param required"})
	}

	options, err := s.Store.Options(examID)
	if err != nil {
		return s.queryError(c, err)
	}
	return c.JSON(http.StatusOK, options)
}

type compareRequest struct {
	ExamID       string   `json:"examId"`
	CollegeCodes []string `json:"collegeCodes"`
	CourseCode   string   `json:"courseCode"`
}

func (s *Server) handleCompare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.ExamID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "examId required"})
	}

	comparison, err := s.Comparator.Compare(req.ExamID, req.CollegeCodes, req.CourseCode)
	if err != nil {
		return s.queryError(c, err)
	}
	return c.JSON(http.StatusOK, comparison)
}

type recommendRequest struct {
	ExamID       string  `json:"examId"`
	Percentile   float64 `json:"percentile"`
	CourseHint   string  `json:"course"`
	CategoryHint string  `json:"category"`
	LocationHint string  `json:"location"`
	Question     string  `json:"question"`
}

func (s *Server) handleRecommend(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.ExamID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "examId required"})
	}

	summary, err := s.Recommender.PrepareCandidates(req.ExamID, req.Percentile, req.CourseHint, req.CategoryHint, req.LocationHint)
	if err != nil {
		return s.queryError(c, err)
	}

	resp := map[string]interface{}{
		"summary": summary,
	}

	if s.AI.Configured() && summary.RelevantOptions > 0 {
		advice, err := s.AI.GenerateAdvice(c.Request().Context(), summary, req.CourseHint, req.CategoryHint, req.Question)
		if err != nil {
			c.Logger().Errorf("Advice generation failed: %v", err)
			resp["adviceError"] = "advice generation unavailable"
		} else {
			resp["advice"] = advice
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// handleReplaceDataset atomically swaps in a new dataset file for an exam and
// drops the cached copy. The payload is the raw CSV the parsing collaborator
// produced; it is written to a temp file in the same directory and renamed
// over the target.
func (s *Server) handleReplaceDataset(c echo.Context) error {
	examID := c.Param("examId")
	target := s.Registry.DatasetPath(s.dataDir, examID)

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read upload"})
	}
	if len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Empty upload"})
	}
	if len(body) > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "Upload too large"})
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to prepare data directory"})
	}

	uploadID := uuid.New().String()[:8]
	tmp := target + ".upload-" + uploadID
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to stage upload"})
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to replace dataset"})
	}

	s.Store.Invalidate(examID)

	records, err := s.Store.Load(examID)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	valid, err := s.Store.LoadValid(examID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	log.Printf("[upload %s] replaced dataset %s: %d rows (%d valid)", uploadID, examID, len(records), len(valid))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Dataset replaced",
		"uploadId":  uploadID,
		"examId":    examID,
		"totalRows": len(records),
		"validRows": len(valid),
	})
}

func (s *Server) handleInvalidateDataset(c echo.Context) error {
	examID := c.Param("examId")
	s.Store.Invalidate(examID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Cache invalidated", "examId": examID})
}

// handleAnalyzePDF extracts sample text from an uploaded cutoff PDF and
// returns a parsing-strategy descriptor for the external parser.
func (s *Server) handleAnalyzePDF(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file form field required"})
	}
	if file.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "Upload too large"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to open upload"})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read upload"})
	}

	sample, err := analyzer.ExtractSampleText(content)
	if err != nil || strings.TrimSpace(sample) == "" {
		if err != nil {
			c.Logger().Errorf("PDF text extraction failed: %v", err)
		}
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Could not extract text from PDF"})
	}

	analysis := analyzer.Analyze(c.Request().Context(), s.AI, sample)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"analysisId": uuid.New().String()[:8],
		"fileName":   file.Filename,
		"analysis":   analysis,
	})
}

// queryError maps engine errors onto status codes: invalid arguments are the
// caller's fault, storage failures are ours.
func (s *Server) queryError(c echo.Context, err error) error {
	var storageErr *dataset.StorageError
	switch {
	case errors.Is(err, query.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &storageErr):
		c.Logger().Errorf("Dataset read failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Dataset unavailable"})
	default:
		c.Logger().Errorf("Query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
