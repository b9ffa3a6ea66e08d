package http

import (
	"net/http"
	"strings"
	"time"

	"budgetplanner/internal/aggregate"
	"budgetplanner/internal/core"
	"budgetplanner/internal/dashboard"
	"budgetplanner/internal/form"
	"budgetplanner/internal/log"
)

type summaryJSON struct {
	Income      core.Money `json:"income"`
	Expense     core.Money `json:"expense"`
	Balance     core.Money `json:"balance"`
	SavingsRate float64    `json:"savings_rate"`
}

type dailyJSON struct {
	Day     string     `json:"day"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

type categoriesJSON struct {
	Type   core.TypeFilter `json:"type"`
	Title  string          `json:"title"`
	Labels []string        `json:"labels"`
	Values []core.Money    `json:"values"`
	Total  core.Money      `json:"total"`
}

type pointJSON struct {
	At     time.Time  `json:"at"`
	Amount core.Money `json:"amount"`
}

type dashboardJSON struct {
	Revision      uint64             `json:"revision"`
	Range         string             `json:"range"`
	Cutoff        time.Time          `json:"cutoff"`
	Summary       summaryJSON        `json:"summary"`
	Daily         []dailyJSON        `json:"daily"`
	Categories    categoriesJSON     `json:"categories"`
	Balance       []pointJSON        `json:"balance"`
	IncomeSeries  []pointJSON        `json:"income_series"`
	ExpenseSeries []pointJSON        `json:"expense_series"`
	Recent        []core.Transaction `json:"recent"`
}

func newDashboardJSON(snap *dashboard.Snapshot, sel core.TypeFilter) dashboardJSON {
	proj := snap.Project(sel)
	out := dashboardJSON{
		Revision: snap.Revision,
		Range:    snap.Range.String(),
		Cutoff:   snap.Cutoff,
		Summary: summaryJSON{
			Income:      snap.Summary.Income,
			Expense:     snap.Summary.Expense,
			Balance:     snap.Summary.Balance,
			SavingsRate: snap.Summary.SavingsRate,
		},
		Daily: make([]dailyJSON, 0, len(snap.Daily)),
		Categories: categoriesJSON{
			Type:   sel,
			Title:  proj.Title(),
			Labels: orEmpty(proj.Labels),
			Values: orEmpty(proj.Values),
			Total:  proj.Total(),
		},
		Balance:       make([]pointJSON, 0, len(snap.Balance)),
		IncomeSeries:  points(snap.IncomeSeries),
		ExpenseSeries: points(snap.ExpenseSeries),
		Recent:        orEmpty(snap.Recent),
	}
	for _, d := range snap.Daily {
		out.Daily = append(out.Daily, dailyJSON{Day: core.FormatDate(d.Day), Income: d.Income, Expense: d.Expense})
	}
	for _, b := range snap.Balance {
		out.Balance = append(out.Balance, pointJSON{At: b.At, Amount: b.Balance})
	}
	return out
}

func points(in []aggregate.Point) []pointJSON {
	out := make([]pointJSON, 0, len(in))
	for _, p := range in {
		out = append(out, pointJSON{At: p.At, Amount: p.Amount})
	}
	return out
}

// orEmpty keeps JSON arrays from encoding as null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// handleDashboard returns every dashboard view for the selected range and
// category type.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, sel, err := ParseView(r.URL.Query(), s.defaultRange)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewResponse().JSON(newDashboardJSON(s.dash.Snapshot(rng), sel)).Write(w)
}

// handleDashboardText renders the terminal dashboard as plain text.
func (s *Server) handleDashboardText(w http.ResponseWriter, r *http.Request) {
	rng, sel, err := ParseView(r.URL.Query(), s.defaultRange)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Rendering dashboard",
		log.FieldOperation, log.OpRender,
		log.FieldRange, rng.String())
	NewResponse().Text(s.render.Dashboard(s.dash.Snapshot(rng), sel) + "\n").Write(w)
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// handleCategories lists the known categories. With q set, it also names
// the known category q most likely means.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	known := form.Categories(s.store.List())
	resp := categoriesResponse{Categories: known}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		if sug, ok := form.SuggestCategory(q, known); ok {
			resp.Suggestion = sug
		}
	}
	NewResponse().JSON(resp).Write(w)
}
