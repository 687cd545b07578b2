package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"orderdesk/internal/database/repository"
)

// catalogItem adapts a pricebook entry to the list widget.
type catalogItem struct {
	entry    repository.PricebookEntry
	currency string
}

func (c catalogItem) Title() string       { return c.entry.ProductName }
func (c catalogItem) Description() string { return "" }
func (c catalogItem) FilterValue() string { return c.entry.ProductName }

type catalogDelegate struct{}

func (d catalogDelegate) Height() int  { return 1 }
func (d catalogDelegate) Spacing() int { return 0 }
func (d catalogDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d catalogDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(catalogItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = "> "
	}
	fmt.Fprintf(w, "%s%-34s %s%s", prefix, entry.entry.ProductName, entry.currency, formatCents(entry.entry.UnitPriceCents))
}

func newCatalogList() list.Model {
	l := list.New([]list.Item{}, catalogDelegate{}, 0, 0)
	l.Title = "Available Products"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.Filter = rankByDistance
	return l
}

// rankByDistance orders filter matches by edit distance to the typed term so
// near-misses in long product names still surface. Substring matches always
// rank ahead of fuzzy ones.
func rankByDistance(term string, targets []string) []list.Rank {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		ranks := make([]list.Rank, len(targets))
		for i := range targets {
			ranks[i] = list.Rank{Index: i}
		}
		return ranks
	}

	type scored struct {
		index    int
		contains bool
		distance int
	}
	var hits []scored
	for i, target := range targets {
		lower := strings.ToLower(target)
		contains := strings.Contains(lower, term)
		distance := levenshtein.ComputeDistance(term, lower)
		if !contains && distance > len(term) {
			continue
		}
		hits = append(hits, scored{index: i, contains: contains, distance: distance})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].contains != hits[j].contains {
			return hits[i].contains
		}
		return hits[i].distance < hits[j].distance
	})

	ranks := make([]list.Rank, 0, len(hits))
	for _, h := range hits {
		ranks = append(ranks, list.Rank{Index: h.index})
	}
	return ranks
}
