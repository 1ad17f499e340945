package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/finance-tracker/internal/config"
	"github.com/iwvelando/finance-tracker/internal/metrics"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/output"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	state         *tracker.Tracker
	profile       config.Profile
	limiter       *rate.Limiter
}

// Option customizes the handler.
type Option func(*handler)

// WithTracker serves stored records when a request carries no config, and
// enables the state and import endpoints.
func WithTracker(state *tracker.Tracker, profile config.Profile) Option {
	return func(h *handler) {
		h.state = state
		h.profile = profile
	}
}

// WithRateLimit caps API requests at perSecond with the given burst. A
// non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(h *handler) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewHandler constructs the HTTP handler that serves the calculation API and
// Prometheus metrics.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.instrument(pattern, fn))
	}

	// Mortgage calculations
	route("/api/mortgage/schedule", h.handleSchedule)
	route("/api/mortgage/summary", h.handleMortgageSummary)
	route("/api/mortgage/impact", h.handleImpact)

	// Retirement calculations
	route("/api/retirement/projections", h.handleProjections)
	route("/api/retirement/summary", h.handleRetirementSummary)

	// Spending reports
	route("/api/spending/summary", h.handleSpendingSummary)
	route("/api/spending/transactions", h.handleTransactions)

	// Config serialization for downloads
	route("/api/export", h.handleExport)

	// Stored records, when a tracker is attached
	route("/api/state", h.handleState)
	route("/api/import", h.handleImport)

	route("/api/version", h.handleVersion)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if h.limiter != nil && !h.limiter.Allow() {
			h.logger.Warn("rate limit exceeded",
				zap.String("op", "server.instrument"),
				zap.String("route", route),
			)
			recorder.Header().Set("Retry-After", "1")
			h.writeJSON(recorder, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		} else {
			next(recorder, r)
		}

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// calculationRequest is the body accepted by the calculation endpoints.
// Config is a configuration document in the same shape as config.yaml.
type calculationRequest struct {
	Config  json.RawMessage    `json:"config,omitempty"`
	Options calculationOptions `json:"options"`
}

// calculationOptions tune a calculation. Month is a YYYY-MM calendar month,
// defaulting to the current one.
type calculationOptions struct {
	Extra         *float64         `json:"extra,omitempty"`
	Years         *int             `json:"years,omitempty"`
	Account       string           `json:"account,omitempty"`
	CurrentAge    *int             `json:"currentAge,omitempty"`
	RetirementAge *int             `json:"retirementAge,omitempty"`
	Month         string           `json:"month,omitempty"`
	Months        *int             `json:"months,omitempty"`
	Filter        *spending.Filter `json:"filter,omitempty"`
}

// requestState is everything a calculation handler needs.
type requestState struct {
	tracker  *tracker.Tracker
	profile  config.Profile
	options  calculationOptions
	warnings []string
	start    time.Time
}

type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) *apiError {
	return &apiError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// resolve decodes the request and builds a tracker over the posted config,
// falling back to the attached tracker when no config is posted.
func (h *handler) resolve(w http.ResponseWriter, r *http.Request) (*requestState, *apiError) {
	state := &requestState{start: time.Now()}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, &apiError{status: http.StatusRequestEntityTooLarge,
				msg: fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize)}
		}
		return nil, badRequest("failed to read request: %v", err)
	}

	var req calculationRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("failed to decode request: %v", err)
		}
	}
	state.options = req.Options

	raw := bytes.TrimSpace(req.Config)
	switch {
	case len(raw) > 0 && !bytes.Equal(raw, []byte("null")):
		cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(raw), "json")
		if err != nil {
			return nil, badRequest("%v", err)
		}
		state.warnings = cfg.ValidateConfiguration()

		snapshot, err := cfg.ToSnapshot()
		if err != nil {
			return nil, badRequest("invalid configuration: %v", err)
		}
		state.tracker = tracker.New(nil, h.logger)
		if err := state.tracker.ReplaceSnapshot(r.Context(), snapshot); err != nil {
			return nil, badRequest("invalid configuration: %v", err)
		}
		state.profile = cfg.Profile
	case h.state != nil:
		state.tracker = h.state
		state.profile = h.profile
	default:
		return nil, badRequest("missing configuration")
	}

	if req.Options.CurrentAge != nil {
		state.profile.CurrentAge = req.Options.CurrentAge
	}
	if req.Options.RetirementAge != nil {
		state.profile.RetirementAge = req.Options.RetirementAge
	}
	if err := state.profile.Validate(); err != nil {
		return nil, badRequest("invalid profile: %v", err)
	}
	return state, nil
}

type scheduleResponse struct {
	Schedule loans.Schedule `json:"schedule"`
	CSV      string         `json:"csv"`
	Warnings []string       `json:"warnings,omitempty"`
	Duration string         `json:"duration"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	mortgage, found := state.tracker.Mortgage()
	if !found {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, tracker.ErrNoMortgage.Error(), op)
		return
	}
	extra := mortgage.ExtraPaymentAmount
	if state.options.Extra != nil {
		extra = *state.options.Extra
	}
	if err := validation.ValidateNonNegative("extra payment", extra); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	schedule, err := state.tracker.Schedule(extra)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}

	var csv bytes.Buffer
	output.CsvSchedule(&csv, schedule)

	elapsed := time.Since(state.start)
	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.Int("payments", schedule.Len()),
		zap.Bool("capped", schedule.Capped),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Schedule: schedule,
		CSV:      csv.String(),
		Warnings: state.warnings,
		Duration: elapsed.String(),
	})
}

type mortgageSummaryResponse struct {
	Summary  *loans.MortgageSummary `json:"summary"`
	Warnings []string               `json:"warnings,omitempty"`
}

func (h *handler) handleMortgageSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMortgageSummary"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	if _, found := state.tracker.Mortgage(); !found {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, tracker.ErrNoMortgage.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, mortgageSummaryResponse{
		Summary:  state.tracker.MortgageSummary(),
		Warnings: state.warnings,
	})
}

type impactResponse struct {
	Impact   *loans.ExtraPaymentScenario `json:"impact"`
	Warnings []string                    `json:"warnings,omitempty"`
}

func (h *handler) handleImpact(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImpact"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	if state.options.Extra == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "options.extra is required", op)
		return
	}
	if err := validation.ValidateNonNegative("extra payment", *state.options.Extra); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if _, found := state.tracker.Mortgage(); !found {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, tracker.ErrNoMortgage.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, impactResponse{
		Impact:   state.tracker.ExtraPaymentImpact(*state.options.Extra),
		Warnings: state.warnings,
	})
}

type projectionsResponse struct {
	Account     string                  `json:"account,omitempty"`
	Years       int                     `json:"years"`
	Projections []retirement.Projection `json:"projections"`
	CSV         string                  `json:"csv"`
	Warnings    []string                `json:"warnings,omitempty"`
}

func (h *handler) handleProjections(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjections"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	years := state.profile.ProjectionYears()
	if state.options.Years != nil {
		years = *state.options.Years
	}
	if err := validation.ValidateProjectionYears(years); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	response := projectionsResponse{Years: years, Warnings: state.warnings}
	if ref := state.options.Account; ref != "" {
		account, found := state.tracker.FindAccount(ref)
		if !found {
			h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("%v: %s", tracker.ErrUnknownAccount, ref), op)
			return
		}
		projections, err := state.tracker.Projections(account.ID, years, state.profile.CurrentAge)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		response.Account = account.Name
		response.Projections = projections
	} else {
		response.Projections = state.tracker.CombinedProjections(years, state.profile.CurrentAge)
	}

	var csv bytes.Buffer
	output.CsvProjections(&csv, response.Projections)
	response.CSV = csv.String()

	h.writeJSON(w, http.StatusOK, response)
}

type retirementSummaryResponse struct {
	Summary  retirement.Summary `json:"summary"`
	Warnings []string           `json:"warnings,omitempty"`
}

func (h *handler) handleRetirementSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRetirementSummary"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, retirementSummaryResponse{
		Summary:  state.tracker.RetirementSummary(state.profile.RetirementAge, state.profile.CurrentAge),
		Warnings: state.warnings,
	})
}

type spendingSummaryResponse struct {
	Report   spending.Report `json:"report"`
	CSV      string          `json:"csv"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (h *handler) handleSpendingSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSpendingSummary"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	month := time.Now().UTC()
	if state.options.Month != "" {
		parsed, err := datetime.ParseMonth(state.options.Month)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		month = parsed
	}
	months := constants.DefaultTrendMonths
	if state.options.Months != nil {
		months = *state.options.Months
	}
	if err := validation.ValidateTrendMonths(months); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	report := state.tracker.SpendingReport(month, months)
	var csv bytes.Buffer
	output.CsvSpendingTrend(&csv, report.Trend)

	h.logger.Info("spending report computed",
		zap.String("op", op),
		zap.String("month", report.Month),
		zap.Int("transactions", report.Totals.Count),
		zap.Duration("duration", time.Since(state.start)),
	)

	h.writeJSON(w, http.StatusOK, spendingSummaryResponse{
		Report:   report,
		CSV:      csv.String(),
		Warnings: state.warnings,
	})
}

type transactionsResponse struct {
	Transactions []spending.Transaction `json:"transactions"`
	Totals       spending.Totals        `json:"totals"`
	CSV          string                 `json:"csv"`
}

func (h *handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTransactions"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	var filter spending.Filter
	if state.options.Filter != nil {
		filter = *state.options.Filter
	}
	if filter.Type != "" && !filter.Type.Valid() {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unknown transaction type %q", filter.Type), op)
		return
	}
	for _, bound := range []string{filter.From, filter.To} {
		if bound == "" {
			continue
		}
		if err := validation.ValidateDate("filter date", bound); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	transactions := state.tracker.Transactions(filter)
	var csv bytes.Buffer
	output.CsvTransactions(&csv, transactions, state.tracker.Categories(""))

	h.writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: transactions,
		Totals:       spending.Summarize(transactions),
		CSV:          csv.String(),
	})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	state, ok := h.begin(w, r, op)
	if !ok {
		return
	}

	yamlBytes, err := yaml.Marshal(config.FromSnapshot(state.tracker.Snapshot(), state.profile))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.state == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "no store attached", "server.handleState")
		return
	}

	h.writeJSON(w, http.StatusOK, h.state.Snapshot())
}

type importResponse struct {
	Mortgage      bool     `json:"mortgage"`
	Accounts      int      `json:"accounts"`
	Contributions int      `json:"contributions"`
	Categories    int      `json:"categories"`
	Transactions  int      `json:"transactions"`
	Warnings      []string `json:"warnings,omitempty"`
}

// handleImport replaces the stored records with an uploaded YAML config.
func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.state == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "no store attached", op)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	cfg, err := config.LoadConfigurationFromReader(file, "yaml")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	snapshot, err := cfg.ToSnapshot()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid configuration: %v", err), op)
		return
	}
	if err := h.state.ReplaceSnapshot(r.Context(), snapshot); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to store configuration: %v", err), op)
		return
	}

	h.logger.Info("imported configuration",
		zap.String("op", op),
		zap.Int("accounts", len(snapshot.Accounts)),
		zap.Int("contributions", len(snapshot.Contributions)),
		zap.Int("transactions", len(snapshot.Transactions)),
	)

	h.writeJSON(w, http.StatusOK, importResponse{
		Mortgage:      snapshot.Mortgage != nil,
		Accounts:      len(snapshot.Accounts),
		Contributions: len(snapshot.Contributions),
		Categories:    len(snapshot.Categories),
		Transactions:  len(snapshot.Transactions),
		Warnings:      warnings,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// begin enforces POST and resolves the request, writing the error response
// itself when it cannot.
func (h *handler) begin(w http.ResponseWriter, r *http.Request, op string) (*requestState, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil, false
	}
	state, apiErr := h.resolve(w, r)
	if apiErr != nil {
		h.respondErrorWithOp(w, apiErr.status, apiErr.msg, op)
		return nil, false
	}
	return state, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before writing the status line, so an encoding
// failure still yields a 500 rather than a truncated 200.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
