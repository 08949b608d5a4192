package web

import (
	"errors"
	"net/http"
	"sort"

	"github.com/vbonduro/cartshare/internal/analytics"
	"github.com/vbonduro/cartshare/internal/domain"
)

const topItemsShown = 10

// namedTotal is a map entry flattened for ordered rendering.
type namedTotal struct {
	Name  string
	Total float64
}

// sortedTotals orders totals by amount descending, then name.
func sortedTotals(totals map[string]float64) []namedTotal {
	out := make([]namedTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, namedTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	summary, err := s.service.GetAnalytics(r.Context(), sess.JoinCode)
	if errors.Is(err, domain.ErrHouseholdNotFound) {
		s.sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.writeError(w, r, err, "failed to compute analytics")
		return
	}

	if err := s.renderPage(w, http.StatusOK,
		map[string]any{
			"Summary":   summary,
			"ByUser":    sortedTotals(summary.TotalsByUser),
			"ByList":    sortedTotals(summary.TotalsByList),
			"TopItems":  analytics.Limit(summary.TopItems, topItemsShown),
			"User":      sess.Username,
			"JoinCode":  sess.JoinCode,
			"ActiveNav": "analytics",
		},
		"base.html", "pages/analytics.html",
	); err != nil {
		s.logger.Error("render page error", "page", "analytics", "error", err)
	}
}
