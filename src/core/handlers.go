package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is stamped on every response
const APIVersion = "1.0"

// writeSuccess writes the standard success envelope
func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-API-Version", APIVersion)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError maps a registry error kind to an HTTP status and writes the
// error envelope
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := KindOf(err)
	switch kind {
	case KindUnauthorized:
		status = http.StatusUnauthorized
	case KindForbidden:
		status = http.StatusForbidden
	case KindValidation, KindInvalidTransfer:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindInvalidTransition, KindInsufficientBalance:
		status = http.StatusConflict
	case KindLimitExceeded:
		status = http.StatusTooManyRequests
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-API-Version", APIVersion)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"kind":    string(kind),
			"message": err.Error(),
		},
	})
}

// NewRouter builds the API router with the full middleware chain
func (n *WhisprNode) NewRouter() http.Handler {
	router := mux.NewRouter()

	// System endpoints
	router.HandleFunc("/api/health", n.HealthCheckHandler).Methods("GET")
	router.HandleFunc("/api/system/initialize", n.InitializeSystemHandler).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Report endpoints
	router.HandleFunc("/api/reports", n.SubmitReportHandler).Methods("POST")
	router.HandleFunc("/api/reports", n.ListReportsHandler).Methods("GET")
	router.HandleFunc("/api/reports/search", n.SearchReportsHandler).Methods("GET")
	router.HandleFunc("/api/reports/mine", n.GetUserReportsHandler).Methods("GET")
	router.HandleFunc("/api/reports/bulk-approve", n.BulkApproveHandler).Methods("POST")
	router.HandleFunc("/api/reports/{id:[0-9]+}", n.GetReportHandler).Methods("GET")
	router.HandleFunc("/api/reports/{id:[0-9]+}/review", n.PutUnderReviewHandler).Methods("POST")
	router.HandleFunc("/api/reports/{id:[0-9]+}/approve", n.ApproveReportHandler).Methods("POST")
	router.HandleFunc("/api/reports/{id:[0-9]+}/reject", n.RejectReportHandler).Methods("POST")

	// Messaging endpoints
	router.HandleFunc("/api/reports/{id:[0-9]+}/messages", n.SendMessageHandler).Methods("POST")
	router.HandleFunc("/api/reports/{id:[0-9]+}/messages", n.GetMessagesHandler).Methods("GET")

	// Evidence endpoints
	router.HandleFunc("/api/reports/{id:[0-9]+}/evidence", n.UploadEvidenceHandler).Methods("POST")
	router.HandleFunc("/api/evidence/{ref}", n.GetEvidenceHandler).Methods("GET")

	// Token endpoints
	router.HandleFunc("/api/tokens/transfer", n.TransferTokensHandler).Methods("POST")
	router.HandleFunc("/api/tokens/grant", n.GrantTokensHandler).Methods("POST")
	router.HandleFunc("/api/balance", n.GetBalanceHandler).Methods("GET")
	router.HandleFunc("/api/profile", n.GetProfileHandler).Methods("GET")

	// Authority endpoints
	router.HandleFunc("/api/authorities", n.AddAuthorityHandler).Methods("POST")
	router.HandleFunc("/api/authorities", n.GetAuthoritiesHandler).Methods("GET")
	router.HandleFunc("/api/authorities/{id}", n.RemoveAuthorityHandler).Methods("DELETE")

	// Analytics endpoints
	router.HandleFunc("/api/analytics", n.GetAnalyticsHandler).Methods("GET")

	limiter := NewIPRateLimiter(n.cfg.RateLimitPerMinute)

	var handler http.Handler = router
	handler = MetricsMiddleware(handler)
	handler = CallerAuthMiddleware(n.cfg.CallerAuthSecret, n.cfg.RequireCallerAuth)(handler)
	handler = BodySizeLimitMiddleware(n.cfg.MaxBodySizeBytes)(handler)
	handler = RateLimitMiddleware(limiter)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// StartServer starts the HTTP server and blocks until shutdown
func (n *WhisprNode) StartServer(port string) error {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: n.NewRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting whispr registry server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// reportIDFromRequest parses the {id} route variable
func reportIDFromRequest(r *http.Request) (uint64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		return 0, errValidation("invalid report id")
	}
	return id, nil
}

// HealthCheckHandler handles health check requests
func (n *WhisprNode) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, n.HealthCheck())
}

// InitializeSystemHandler bootstraps the first authority
func (n *WhisprNode) InitializeSystemHandler(w http.ResponseWriter, r *http.Request) {
	if err := n.InitializeSystem(CallerFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"initialized": true})
}

// SubmitReportHandler handles report submission
func (n *WhisprNode) SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	var sub ReportSubmission
	if err := DecodeJSONBody(w, r, &sub); err != nil {
		return
	}

	reportID, err := n.SubmitReport(CallerFromRequest(r), sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reportId": reportID})
}

// ListReportsHandler returns all reports, optionally filtered by ?status=
// and paginated by ?page=&pageSize=. Authorities only.
func (n *WhisprNode) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromRequest(r)

	if status := r.URL.Query().Get("status"); status != "" {
		reports, err := n.GetReportsByStatus(caller, ReportStatus(status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, map[string]interface{}{"reports": reports})
		return
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			writeError(w, errValidation("invalid page"))
			return
		}
		pageSize := 20
		if sizeStr := r.URL.Query().Get("pageSize"); sizeStr != "" {
			if pageSize, err = strconv.Atoi(sizeStr); err != nil {
				writeError(w, errValidation("invalid pageSize"))
				return
			}
		}
		reports, total, err := n.GetReportsPaginated(caller, page, pageSize)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, map[string]interface{}{"reports": reports, "total": total})
		return
	}

	reports, err := n.GetAllReports(caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reports": reports})
}

// SearchReportsHandler filters reports by query parameters. Authorities only.
func (n *WhisprNode) SearchReportsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := SearchFilter{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		Status:   ReportStatus(q.Get("status")),
	}
	if v := q.Get("dateFrom"); v != "" {
		from, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, errValidation("invalid dateFrom"))
			return
		}
		filter.DateFrom = from
	}
	if v := q.Get("dateTo"); v != "" {
		to, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, errValidation("invalid dateTo"))
			return
		}
		filter.DateTo = to
	}
	if v := q.Get("minStake"); v != "" {
		min, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errValidation("invalid minStake"))
			return
		}
		filter.MinStake = min
	}
	if v := q.Get("maxStake"); v != "" {
		max, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errValidation("invalid maxStake"))
			return
		}
		filter.MaxStake = max
		filter.HasMaxStake = true
	}

	reports, err := n.SearchReports(CallerFromRequest(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reports": reports})
}

// GetUserReportsHandler returns the caller's own reports
func (n *WhisprNode) GetUserReportsHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"reports": n.GetUserReports(CallerFromRequest(r))})
}

// GetReportHandler returns a single report, visibility-filtered: callers
// without access get an empty list rather than a 404
func (n *WhisprNode) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, ok := n.GetReport(CallerFromRequest(r), reportID)
	if !ok {
		writeSuccess(w, map[string]interface{}{"reports": []Report{}})
		return
	}
	writeSuccess(w, map[string]interface{}{"reports": []Report{report}})
}

// reviewRequest is the body of review/approve/reject operations
type reviewRequest struct {
	Notes string `json:"notes"`
}

// PutUnderReviewHandler moves a report into review
func (n *WhisprNode) PutUnderReviewHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if r.ContentLength != 0 {
		if err := DecodeJSONBody(w, r, &req); err != nil {
			return
		}
	}

	if err := n.PutUnderReview(CallerFromRequest(r), reportID, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reportId": reportID, "status": StatusUnderReview})
}

// ApproveReportHandler approves a report
func (n *WhisprNode) ApproveReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if r.ContentLength != 0 {
		if err := DecodeJSONBody(w, r, &req); err != nil {
			return
		}
	}

	if err := n.ApproveReport(CallerFromRequest(r), reportID, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reportId": reportID, "status": StatusApproved})
}

// RejectReportHandler rejects a report; notes are required
func (n *WhisprNode) RejectReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if r.ContentLength != 0 {
		if err := DecodeJSONBody(w, r, &req); err != nil {
			return
		}
	}

	if err := n.RejectReport(CallerFromRequest(r), reportID, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reportId": reportID, "status": StatusRejected})
}

// bulkApproveRequest is the body of a bulk approve call
type bulkApproveRequest struct {
	ReportIDs []uint64 `json:"reportIds"`
	Notes     string   `json:"notes"`
}

// BulkApproveHandler approves up to MaxBulkBatchSize reports in one call
func (n *WhisprNode) BulkApproveHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkApproveRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	approved, err := n.BulkApproveReports(CallerFromRequest(r), req.ReportIDs, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"approved": approved})
}

// sendMessageRequest is the body of a message send call
type sendMessageRequest struct {
	Content string `json:"content"`
	As      string `json:"as"`
}

// SendMessageHandler appends a message as reporter or authority
func (n *WhisprNode) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req sendMessageRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	caller := CallerFromRequest(r)
	switch req.As {
	case "authority":
		err = n.SendMessageAsAuthority(caller, reportID, req.Content)
	case "reporter", "":
		err = n.SendMessageAsReporter(caller, reportID, req.Content)
	default:
		err = errValidation("invalid sender role: %s", req.As)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"reportId": reportID})
}

// GetMessagesHandler returns the report's message log, visibility-filtered
func (n *WhisprNode) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"messages": n.GetMessages(CallerFromRequest(r), reportID)})
}

// uploadEvidenceRequest is the body of an evidence upload
type uploadEvidenceRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// UploadEvidenceHandler stores an evidence blob for a report
func (n *WhisprNode) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := reportIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req uploadEvidenceRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	ref, err := n.UploadEvidence(CallerFromRequest(r), reportID, req.Name, req.ContentType, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"ref": ref})
}

// GetEvidenceHandler streams an evidence blob back to an authorized caller
func (n *WhisprNode) GetEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	file, err := n.GetEvidence(CallerFromRequest(r), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("X-API-Version", APIVersion)
	w.Write(file.Data)
}

// transferRequest is the body of a token transfer
type transferRequest struct {
	To     Principal `json:"to"`
	Amount uint64    `json:"amount"`
}

// TransferTokensHandler moves tokens between two accounts
func (n *WhisprNode) TransferTokensHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	if err := n.TransferTokens(CallerFromRequest(r), req.To, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"to": req.To, "amount": req.Amount})
}

// grantRequest is the body of an authority token grant
type grantRequest struct {
	UserID Principal `json:"userId"`
	Amount uint64    `json:"amount"`
}

// GrantTokensHandler credits tokens to a user account. Authorities only.
func (n *WhisprNode) GrantTokensHandler(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	if err := n.AddTokens(CallerFromRequest(r), req.UserID, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"userId": req.UserID, "amount": req.Amount})
}

// GetBalanceHandler returns the caller's token balance
func (n *WhisprNode) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"balance": n.GetUserBalance(CallerFromRequest(r))})
}

// GetProfileHandler returns the caller's account
func (n *WhisprNode) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := n.GetUserProfile(CallerFromRequest(r))
	if !ok {
		writeError(w, errNotFound("user not found"))
		return
	}
	writeSuccess(w, user)
}

// addAuthorityRequest is the body of an authority registration
type addAuthorityRequest struct {
	ID Principal `json:"id"`
}

// AddAuthorityHandler registers a new authority
func (n *WhisprNode) AddAuthorityHandler(w http.ResponseWriter, r *http.Request) {
	var req addAuthorityRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		return
	}

	if err := n.AddAuthority(CallerFromRequest(r), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"id": req.ID})
}

// RemoveAuthorityHandler removes an authority registration
func (n *WhisprNode) RemoveAuthorityHandler(w http.ResponseWriter, r *http.Request) {
	id := Principal(mux.Vars(r)["id"])

	if err := n.RemoveAuthority(CallerFromRequest(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"id": id})
}

// GetAuthoritiesHandler lists all authorities
func (n *WhisprNode) GetAuthoritiesHandler(w http.ResponseWriter, r *http.Request) {
	authorities, err := n.GetAllAuthorities(CallerFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]interface{}{"authorities": authorities})
}

// GetAnalyticsHandler returns registry-wide statistics
func (n *WhisprNode) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := n.GetDetailedAnalytics(CallerFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, analytics)
}
