package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/graph"
	"github.com/RelioAI/relio-mvp/engine/nlp"
	"github.com/RelioAI/relio-mvp/engine/predict"
	"github.com/RelioAI/relio-mvp/engine/semantic"
	"github.com/RelioAI/relio-mvp/pkg/fn"
	"github.com/RelioAI/relio-mvp/pkg/metrics"
	"github.com/RelioAI/relio-mvp/pkg/repo"
	"github.com/RelioAI/relio-mvp/pkg/resilience"
)

var met = metrics.New()

var (
	mRequests = func(endpoint string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("relio_api_requests_total", "endpoint", endpoint), "API requests")
	}
	mPredictDur = met.Histogram("relio_api_predict_duration_seconds", "Prediction latency", nil)
	mSearchOpen = met.Counter("relio_api_search_breaker_open_total", "Similarity searches rejected by the open breaker")
)

// vectorSearcher is the slice of the vector store the API uses.
type vectorSearcher interface {
	SearchFiltered(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]semantic.ComplaintHit, error)
	DeleteByID(ctx context.Context, pointID string) error
}

// issueReader is the slice of the graph store the API uses.
type issueReader interface {
	IssueSummary(ctx context.Context, make, model string) ([]graph.IssueCount, error)
	TopModels(ctx context.Context, limit int) ([]graph.ModelStats, error)
	GetComplaint(ctx context.Context, id string) (domain.Complaint, error)
	ListComplaints(ctx context.Context, opts repo.ListOpts) ([]domain.Complaint, error)
	DeleteComplaint(ctx context.Context, id string) error
}

type serverDeps struct {
	Predictor  *predict.Predictor
	Vectorize  func(text string) []float32
	Complaints []domain.Complaint
	Vectors    vectorSearcher
	Graph      issueReader
	Breaker    *resilience.Breaker
	Logger     *slog.Logger
}

type server struct {
	deps serverDeps
	log  *slog.Logger
}

func newServer(deps serverDeps) *server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Breaker == nil {
		deps.Breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
	}
	return &server{deps: deps, log: log}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", met.Handler())
	mux.HandleFunc("POST /v1/predict", s.handlePredict)
	mux.HandleFunc("POST /v1/compare", s.handleCompare)
	mux.HandleFunc("POST /v1/sentiment", s.handleSentiment)
	mux.HandleFunc("GET /v1/terms", s.handleTerms)
	mux.HandleFunc("GET /v1/similar", s.handleSimilar)
	mux.HandleFunc("GET /v1/issues", s.handleIssues)
	mux.HandleFunc("GET /v1/models/top", s.handleTopModels)
	mux.HandleFunc("GET /v1/complaints", s.handleListComplaints)
	mux.HandleFunc("GET /v1/complaints/{id}", s.handleGetComplaint)
	mux.HandleFunc("DELETE /v1/complaints/{id}", s.handleDeleteComplaint)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	mRequests("predict").Inc()
	start := time.Now()
	defer mPredictDur.Since(start)

	var rec domain.VehicleRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.deps.Predictor.Predict(rec)
	if err != nil {
		s.predictError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CompareRequest is the JSON body for POST /v1/compare.
type CompareRequest struct {
	CarA domain.VehicleRecord `json:"car_a"`
	CarB domain.VehicleRecord `json:"car_b"`
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	mRequests("compare").Inc()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmp, err := s.deps.Predictor.Compare(req.CarA, req.CarB)
	if err != nil {
		s.predictError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *server) predictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnseenCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("prediction failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// SentimentRequest is the JSON body for POST /v1/sentiment.
type SentimentRequest struct {
	Text string `json:"text"`
}

// SentimentResponse carries the full text analysis for one complaint.
type SentimentResponse struct {
	Sentiment nlp.SentimentScores `json:"sentiment"`
	Category  string              `json:"category"`
	Vehicle   *domain.Vehicle     `json:"vehicle,omitempty"`
}

func (s *server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	mRequests("sentiment").Inc()

	var req SentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := domain.ValidateComplaint(domain.Complaint{Text: req.Text}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := SentimentResponse{
		Sentiment: nlp.Sentiment(req.Text),
		Category:  string(nlp.Categorize(req.Text)),
	}
	if v, ok := nlp.ExtractVehicle(req.Text); ok {
		resp.Vehicle = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// TermsResponse pairs top terms with recurring failure patterns.
type TermsResponse struct {
	Terms      []nlp.TermCount            `json:"terms"`
	ByClass    map[string][]nlp.TermCount `json:"by_class,omitempty"`
	Patterns   []nlp.WeightedPattern      `json:"patterns"`
	Categories []string                   `json:"categories"`
}

func (s *server) handleTerms(w http.ResponseWriter, r *http.Request) {
	mRequests("terms").Inc()

	if len(s.deps.Complaints) == 0 {
		writeError(w, http.StatusServiceUnavailable, "complaint dataset not loaded")
		return
	}

	category := domain.SymptomCategory(r.URL.Query().Get("category"))
	k := queryInt(r, "k", 10)

	resp := TermsResponse{
		Terms:    nlp.TopTerms(s.deps.Complaints, category, k),
		Patterns: nlp.FailurePatterns(s.deps.Complaints, k),
		Categories: fn.Unique(fn.Map(s.deps.Complaints, func(c domain.Complaint) string {
			return c.Category
		})),
	}
	if r.URL.Query().Get("by_class") == "true" {
		resp.ByClass = nlp.TopTermsByClass(s.deps.Complaints, k)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	mRequests("similar").Inc()

	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	k := queryInt(r, "k", 5)

	filters := make(map[string]string)
	for _, key := range []string{"make", "model", "category", "source"} {
		if v := r.URL.Query().Get(key); v != "" {
			filters[key] = v
		}
	}

	var hits []semantic.ComplaintHit
	err := s.deps.Breaker.Call(r.Context(), func(ctx context.Context) error {
		var searchErr error
		hits, searchErr = s.deps.Vectors.SearchFiltered(ctx, s.deps.Vectorize(q), k, filters)
		return searchErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			mSearchOpen.Inc()
			writeError(w, http.StatusServiceUnavailable, "similarity search unavailable")
			return
		}
		s.log.Error("similarity search failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (s *server) handleIssues(w http.ResponseWriter, r *http.Request) {
	mRequests("issues").Inc()

	makeName := r.URL.Query().Get("make")
	modelName := r.URL.Query().Get("model")
	if makeName == "" || modelName == "" {
		writeError(w, http.StatusBadRequest, "make and model are required")
		return
	}

	issues, err := s.deps.Graph.IssueSummary(r.Context(), makeName, modelName)
	if err != nil {
		s.log.Error("issue summary failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"make": makeName, "model": modelName, "issues": issues})
}

func (s *server) handleTopModels(w http.ResponseWriter, r *http.Request) {
	mRequests("top_models").Inc()

	stats, err := s.deps.Graph.TopModels(r.Context(), queryInt(r, "k", 10))
	if err != nil {
		s.log.Error("top models failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": stats})
}

func (s *server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	mRequests("complaints_list").Inc()

	opts := repo.ListOpts{
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 50),
	}
	complaints, err := s.deps.Graph.ListComplaints(r.Context(), opts)
	if err != nil {
		s.log.Error("list complaints failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"complaints": complaints})
}

func (s *server) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	mRequests("complaints_get").Inc()

	id := r.PathValue("id")
	c, err := s.deps.Graph.GetComplaint(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "complaint not found")
		return
	}
	if err != nil {
		s.log.Error("get complaint failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleDeleteComplaint(w http.ResponseWriter, r *http.Request) {
	mRequests("complaints_delete").Inc()

	id := r.PathValue("id")
	if err := s.deps.Graph.DeleteComplaint(r.Context(), id); err != nil {
		s.log.Error("delete complaint failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	// The vector point ID is derived from the complaint ID the same way
	// ingestion derives it.
	pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
	if err := s.deps.Vectors.DeleteByID(r.Context(), pointID); err != nil {
		s.log.Error("delete complaint vector failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "partially deleted, retry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
