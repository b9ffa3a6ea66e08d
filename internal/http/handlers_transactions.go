package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"budgetplanner/internal/core"
	"budgetplanner/internal/form"
	"budgetplanner/internal/log"
	"budgetplanner/internal/query"
	"budgetplanner/internal/store"
)

// pageResponse is the JSON form of one table page.
type pageResponse struct {
	Items      []core.Transaction `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	TotalItems int                `json:"total_items"`
	HasPrev    bool               `json:"has_prev"`
	HasNext    bool               `json:"has_next"`
}

func newPageResponse(p query.Page) pageResponse {
	items := p.Items
	if items == nil {
		items = []core.Transaction{}
	}
	return pageResponse{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
	}
}

// mutationFailed handles the error of a store mutation and reports whether
// the handler should stop. A persist failure keeps the change in memory,
// so it is logged and surfaced as a Warning header instead.
func mutationFailed(w http.ResponseWriter, r *http.Request, op, id string, err error) bool {
	if err == nil {
		return false
	}
	ctx := r.Context()
	logger := log.FromContext(ctx)
	if errors.Is(err, store.ErrPersist) {
		logger.WarnContext(ctx, "Change kept in memory only",
			log.FieldOperation, op,
			log.FieldTransactionID, id,
			log.FieldError, err)
		w.Header().Set("Warning", `199 - "change not persisted"`)
		return false
	}
	if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidType) {
		ValidationError(err).Write(w)
		return true
	}
	log.NewStructuredLogger(logger).LogError(ctx, "Transaction "+op+" failed", err, op,
		log.LogFields{log.FieldTransactionID: id})
	InternalServerError("failed to " + op + " transaction").Write(w)
	return true
}

type createdResponse struct {
	Transaction       core.Transaction `json:"transaction"`
	SuggestedCategory string           `json:"suggested_category,omitempty"`
}

type deletedResponse struct {
	Deleted string       `json:"deleted"`
	Page    pageResponse `json:"page"`
}

// handleListTransactions returns one filtered, newest-first page.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := ParseCriteria(q)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	pageSize, page := ParsePaging(q, s.pageSize)
	NewResponse().JSON(newPageResponse(s.dash.Table(c, pageSize, page))).Write(w)
}

// readBody parses the request body and writes the error response when it
// cannot. The second result is false when the handler should stop.
func readBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		if isBodyTooLarge(err) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return nil, false
		}
		BadRequestError("malformed request body").Write(w)
		return nil, false
	}
	return p, true
}

// handleCreateTransaction validates the entry form and adds the
// transaction. The response carries a known category close to the one
// typed, when there is one; the typed category is stored unchanged.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	n, err := form.FromValues(body.Values()).Parse()
	if err != nil {
		ValidationError(err).Write(w)
		return
	}

	var suggested string
	if n.Category != "" {
		if sug, ok := form.SuggestCategory(n.Category, form.Categories(s.store.List())); ok && sug != n.Category {
			suggested = sug
		}
	}

	tx, err := s.store.Add(ctx, n)
	if mutationFailed(w, r, log.OpCreate, tx.ID, err) {
		return
	}
	atomic.AddInt64(&s.appMetrics.created, 1)

	resp := createdResponse{Transaction: tx, SuggestedCategory: suggested}

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(resp).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewResponse().JSON(tx).Write(w)
}

// handleUpdateTransaction applies the fields present in the body.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	patch, err := form.PatchFromValues(body.Values())
	if errors.Is(err, form.ErrNothingToUpdate) {
		BadRequestError("nothing to update").Write(w)
		return
	}
	if err != nil {
		ValidationError(err).Write(w)
		return
	}

	found, err := s.store.Update(ctx, id, patch)
	if mutationFailed(w, r, log.OpUpdate, id, err) {
		return
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}
	atomic.AddInt64(&s.appMetrics.updated, 1)

	tx, _ := s.store.Get(id)
	NewResponse().JSON(tx).Write(w)
}

// handleDeleteTransaction removes a transaction and returns the table page
// to show next, for the criteria and page given in the query string.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	q := r.URL.Query()
	c, err := ParseCriteria(q)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	pageSize, page := ParsePaging(q, s.pageSize)
	before := s.dash.Table(c, pageSize, page)

	found, err := s.store.Delete(ctx, id)
	if mutationFailed(w, r, log.OpDelete, id, err) {
		return
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}
	atomic.AddInt64(&s.appMetrics.deleted, 1)

	next := s.dash.Table(c, pageSize, query.PageAfterDelete(before))
	NewResponse().JSON(deletedResponse{Deleted: id, Page: newPageResponse(next)}).Write(w)
}
