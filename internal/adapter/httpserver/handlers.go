package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amplifai/lesson-service/internal/config"
	"github.com/amplifai/lesson-service/internal/domain"
	"github.com/amplifai/lesson-service/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg       config.Config
	Ingest    usecase.IngestService
	Generate  usecase.GenerateService
	Store     usecase.StoreService
	Lessons   usecase.LessonsService
	Search    usecase.SearchService
	DBCheck   func(ctx context.Context) error
	TikaCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, ingest usecase.IngestService, gen usecase.GenerateService, store usecase.StoreService, lessons usecase.LessonsService, search usecase.SearchService, dbCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Ingest: ingest, Generate: gen, Store: store, Lessons: lessons, Search: search, DBCheck: dbCheck, TikaCheck: tikaCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// lessonResponse is the wire shape of a stored lesson.
type lessonResponse struct {
	ID        string                `json:"id"`
	Lesson    domain.LessonDocument `json:"lesson"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
	Score     int                   `json:"score,omitempty"`
}

func toLessonResponse(v usecase.LessonView) lessonResponse {
	return lessonResponse{ID: v.ID, Lesson: v.Document, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
}

// GenerateHandler turns pasted text or uploaded files into a structured
// lesson. The generated lesson is stored immediately; a store failure is
// logged but does not fail the request, the caller still gets the lesson.
func (s *Server) GenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		var (
			raw  string
			prov usecase.Provenance
			err  error
		)
		switch {
		case strings.Contains(ct, "multipart/form-data"):
			raw, prov, err = s.ingestMultipart(w, r)
		case strings.Contains(ct, "application/json"):
			raw, err = s.ingestJSON(w, r)
		default:
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data or application/json", domain.ErrInvalidArgument), nil)
			return
		}
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		res, err := s.Generate.Generate(r.Context(), raw)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		doc := domain.BuildDocument(res.Lesson, res.Tags)

		resp := map[string]any{
			"lesson":        doc,
			"suggestedTags": doc.Tags,
			"backend":       res.Backend,
		}
		id, isNew, err := s.Store.Store(r.Context(), doc, prov)
		if err != nil {
			// The lesson is still valuable without persistence.
			LoggerFrom(r).Error("auto-save failed", slog.Any("error", err))
			resp["saved"] = false
		} else {
			resp["saved"] = true
			resp["lessonId"] = id
			resp["isNew"] = isNew
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) ingestJSON(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	return s.Ingest.FromText(r.Context(), req.Text)
}

func (s *Server) ingestMultipart(w http.ResponseWriter, r *http.Request) (string, usecase.Provenance, error) {
	maxBytes := s.Cfg.MaxTotalBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			return "", usecase.Provenance{}, fmt.Errorf("%w: combined upload exceeds %dMB limit", domain.ErrPayloadTooLarge, s.Cfg.MaxTotalUploadMB)
		}
		return "", usecase.Provenance{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	// Pasted narrative may ride along in the same form.
	if text := strings.TrimSpace(r.FormValue("text")); text != "" {
		raw, err := s.Ingest.FromText(r.Context(), text)
		return raw, usecase.Provenance{}, err
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return "", usecase.Provenance{}, fmt.Errorf("%w: provide text or at least one file", domain.ErrEmptyInput)
	}

	var (
		files []usecase.FileInput
		prov  usecase.Provenance
	)
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return "", usecase.Provenance{}, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidArgument, fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return "", usecase.Provenance{}, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidArgument, fh.Filename, err)
		}
		// Sniff content rather than trusting the declared type.
		mt := mimetype.Detect(data).String()
		files = append(files, usecase.FileInput{
			Name:      fh.Filename,
			MediaType: mt,
			Size:      int64(len(data)),
			Data:      data,
		})
	}
	// Provenance records the first file; batches keep a single row.
	prov = usecase.Provenance{OriginalFilename: files[0].Name, FileType: files[0].MediaType}
	raw, err := s.Ingest.FromFiles(r.Context(), files)
	return raw, prov, err
}

// saveLessonRequest is the client-supplied lesson save payload.
type saveLessonRequest struct {
	Title           string               `json:"title" validate:"required,max=200"`
	QuickSummary    string               `json:"quickSummary" validate:"required,max=2000"`
	Problem         string               `json:"problem" validate:"required"`
	Solution        string               `json:"solution" validate:"required"`
	Impact          string               `json:"impact" validate:"required"`
	TipsWarnings    string               `json:"tipsWarnings"`
	Tags            []string             `json:"tags" validate:"max=20,dive,max=50"`
	Difficulty      string               `json:"difficulty"`
	TimeToImplement string               `json:"timeToImplement"`
	Subject         string               `json:"subject"`
	GradeLevel      string               `json:"gradeLevel"`
	CustomAITool    *domain.CustomAITool `json:"customAiTool"`
	PromptUsed      *domain.PromptUsed   `json:"promptUsed"`
}

// SaveHandler stores a lesson supplied directly by the client.
func (s *Server) SaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req saveLessonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		doc := domain.BuildDocument(domain.StructuredLesson{
			Title:           req.Title,
			QuickSummary:    req.QuickSummary,
			Problem:         req.Problem,
			Solution:        req.Solution,
			Impact:          req.Impact,
			TipsWarnings:    req.TipsWarnings,
			Difficulty:      domain.Difficulty(req.Difficulty),
			TimeToImplement: req.TimeToImplement,
		}, req.Tags)
		doc.CustomAITool = req.CustomAITool
		doc.PromptUsed = req.PromptUsed

		id, isNew, err := s.Store.Store(r.Context(), doc, usecase.Provenance{Subject: req.Subject, GradeLevel: req.GradeLevel})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		status := http.StatusCreated
		if !isNew {
			status = http.StatusOK
		}
		writeJSON(w, status, map[string]any{"id": id, "isNew": isNew})
	}
}

// ListHandler returns lessons with optional query, tag, difficulty and sort
// parameters.
func (s *Server) ListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := usecase.ListFilter{
			Query:      q.Get("q"),
			Difficulty: domain.Difficulty(q.Get("difficulty")),
			SortBy:     q.Get("sortBy"),
		}
		if tags := q.Get("tags"); tags != "" {
			filter.Tags = strings.Split(tags, ",")
		}
		views, err := s.Lessons.List(r.Context(), filter)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]lessonResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toLessonResponse(v))
		}
		writeJSON(w, http.StatusOK, map[string]any{"lessons": out, "total": len(out)})
	}
}

// GetHandler returns one lesson by id.
func (s *Server) GetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: id missing", domain.ErrInvalidArgument), nil)
			return
		}
		v, err := s.Lessons.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toLessonResponse(v))
	}
}

// TagsHandler returns the distinct tags across all lessons.
func (s *Server) TagsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := s.Lessons.Tags(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
	}
}

// SearchHandler returns ranked lessons for a query.
func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		ranked, err := s.Search.Search(r.Context(), query)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]lessonResponse, 0, len(ranked))
		for _, sc := range ranked {
			lr := toLessonResponse(sc.LessonView)
			lr.Score = sc.Score
			out = append(out, lr)
		}
		writeJSON(w, http.StatusOK, map[string]any{"lessons": out, "total": len(out)})
	}
}

// ChatHandler answers a free-text question over the lesson library.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		res, err := s.Lessons.Chat(r.Context(), req.Message)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]lessonResponse, 0, len(res.Lessons))
		for _, sc := range res.Lessons {
			lr := toLessonResponse(sc.LessonView)
			lr.Score = sc.Score
			out = append(out, lr)
		}
		writeJSON(w, http.StatusOK, map[string]any{"reply": res.Reply, "lessons": out})
	}
}

// ReadyzHandler probes DB and Tika dependencies.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.TikaCheck != nil {
			if err := s.TikaCheck(ctx); err != nil {
				checks = append(checks, check{Name: "tika", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "tika", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
