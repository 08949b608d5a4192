// Package analytics aggregates spending over a household's lists.
//
// Cost is always quantity × price in float64; nothing is rounded.
package analytics

import (
	"sort"

	"github.com/vbonduro/cartshare/internal/domain"
)

// ItemTotal is the total cost of every item sharing a name.
type ItemTotal struct {
	Name  string
	Total float64
}

// Summary holds cross-list analytics for one household.
type Summary struct {
	TotalsByUser map[string]float64
	TotalsByList map[string]float64
	// TopItems is ordered by Total descending. Items with equal totals keep
	// the order in which their name was first seen, walking lists by name and
	// items in append order.
	TopItems   []ItemTotal
	TotalSpend float64
	// TotalItems is the sum of quantities, not the number of entries.
	TotalItems int
}

// CalculateTotals returns the cost of items per adding user. Users with no
// items are absent from the result.
func CalculateTotals(items []domain.Item) map[string]float64 {
	totals := make(map[string]float64)
	for _, item := range items {
		totals[item.AddedBy] += item.Cost()
	}
	return totals
}

// ListTotal returns the cost of all items in a list.
func ListTotal(items []domain.Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Cost()
	}
	return total
}

// AllLists walks every list once and builds the household summary.
func AllLists(doc *domain.Document) *Summary {
	summary := &Summary{
		TotalsByUser: make(map[string]float64),
		TotalsByList: make(map[string]float64),
	}

	byItem := make(map[string]*ItemTotal)
	var order []string

	for _, listName := range doc.ListNames() {
		summary.TotalsByList[listName] = 0
		list := doc.Lists[listName]
		if list == nil {
			continue
		}
		for _, item := range list.Items {
			cost := item.Cost()
			summary.TotalsByUser[item.AddedBy] += cost
			summary.TotalsByList[listName] += cost
			summary.TotalSpend += cost
			summary.TotalItems += item.Quantity

			it, seen := byItem[item.Name]
			if !seen {
				it = &ItemTotal{Name: item.Name}
				byItem[item.Name] = it
				order = append(order, item.Name)
			}
			it.Total += cost
		}
	}

	summary.TopItems = make([]ItemTotal, 0, len(order))
	for _, name := range order {
		summary.TopItems = append(summary.TopItems, *byItem[name])
	}
	sort.SliceStable(summary.TopItems, func(i, j int) bool {
		return summary.TopItems[i].Total > summary.TopItems[j].Total
	})

	return summary
}

// Limit returns at most n leading entries of items.
func Limit(items []ItemTotal, n int) []ItemTotal {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
