package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/store"
)

// requireAuth verifies the bearer token and puts the user on the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.authSvc.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := contextWithUser(r.Context(), user)
		next(w, r.WithContext(ctx))
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.authSvc.SignUp(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		slog.ErrorContext(r.Context(), "Sign-up failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.authSvc.SignIn(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	user, err := s.authSvc.VerifyToken(token)
	if err != nil {
		slog.ErrorContext(r.Context(), "Issued token failed verification", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	s.sessionFor(user)

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"uid":   user.UID,
		"email": user.Email,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	user := userFromContext(r.Context())
	s.dropSession(user.UID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

type createTransactionRequest struct {
	Type     string `json:"type"`
	Amount   any    `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(userFromContext(r.Context()))
	writeJSON(w, http.StatusOK, ctrl.Views().List)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := userFromContext(r.Context())
	tx := core.Transaction{
		Type:     core.Type(strings.TrimSpace(req.Type)),
		Amount:   core.CoerceAmount(req.Amount),
		Date:     strings.TrimSpace(req.Date),
		Category: sanitizeInput(req.Category),
		Desc:     sanitizeInput(req.Desc),
	}

	id, err := s.txSvc.Create(r.Context(), user.UID, tx)
	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Create transaction failed", "uid", user.UID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	user := userFromContext(r.Context())
	err := s.txSvc.Delete(r.Context(), user.UID, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case err != nil:
		slog.ErrorContext(r.Context(), "Delete transaction failed", "uid", user.UID, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

type filtersResponse struct {
	Type          string `json:"type"`
	Month         string `json:"month"`
	AutoFollow    bool   `json:"auto_follow"`
	SummaryPeriod string `json:"summary_period"`
	Year          int    `json:"year"`
	YearOptions   []int  `json:"year_options"`
}

type updateFiltersRequest struct {
	Type   *string `json:"type"`
	Month  *string `json:"month"`
	Period *string `json:"period"`
	Year   *int    `json:"year"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(userFromContext(r.Context()))

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req updateFiltersRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		// Period before month: a manual month pick must win over the
		// auto-follow the period change triggers.
		if req.Period != nil {
			ctrl.SetSummaryPeriod(r.Context(), *req.Period)
		}
		if req.Month != nil {
			ctrl.SetMonthFilter(r.Context(), *req.Month)
		}
		if req.Type != nil {
			ctrl.SetTypeFilter(r.Context(), *req.Type)
		}
		if req.Year != nil {
			ctrl.SetYear(r.Context(), *req.Year)
		}
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	st := ctrl.Filters()
	writeJSON(w, http.StatusOK, filtersResponse{
		Type:          st.TypeFilter,
		Month:         st.MonthFilter,
		AutoFollow:    st.MonthFilterAutoFollow,
		SummaryPeriod: st.SummaryPeriod,
		Year:          st.SelectedYear,
		YearOptions:   filter.YearOptions(time.Now()),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctrl := s.sessionFor(userFromContext(r.Context()))
	writeJSON(w, http.StatusOK, ctrl.Views().Dashboard)
}

func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctrl := s.sessionFor(userFromContext(r.Context()))
	writeJSON(w, http.StatusOK, ctrl.Views().Yearly)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctrl := s.sessionFor(userFromContext(r.Context()))
	filename, content, err := ctrl.ExportCSV()
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"income":  core.DefaultCategories(core.Income),
		"expense": core.DefaultCategories(core.Expense),
		"saving":  core.DefaultCategories(core.Saving),
	})
}
