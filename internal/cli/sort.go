package cli

import (
	"sort"
	"strings"

	"github.com/oldmanfooty/carnival-sync/internal/store"
)

// SortOrder selects how listings are ordered.
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByState SortOrder = "state"
	SortByTitle SortOrder = "title"
)

// sortCarnivals orders carnivals in place. Date is always the tiebreak;
// an unknown order falls back to date.
func sortCarnivals(carnivals []*store.Carnival, order SortOrder) {
	switch order {
	case SortByState:
		sort.SliceStable(carnivals, func(i, j int) bool {
			if carnivals[i].State != carnivals[j].State {
				return carnivals[i].State < carnivals[j].State
			}
			return carnivals[i].Date.Before(carnivals[j].Date)
		})
	case SortByTitle:
		sort.SliceStable(carnivals, func(i, j int) bool {
			ti := strings.ToLower(carnivals[i].Title)
			tj := strings.ToLower(carnivals[j].Title)
			if ti != tj {
				return ti < tj
			}
			return carnivals[i].Date.Before(carnivals[j].Date)
		})
	default:
		sort.SliceStable(carnivals, func(i, j int) bool {
			if !carnivals[i].Date.Equal(carnivals[j].Date) {
				return carnivals[i].Date.Before(carnivals[j].Date)
			}
			return carnivals[i].ID < carnivals[j].ID
		})
	}
}
