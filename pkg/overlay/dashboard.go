package overlay

import (
	"time"

	"github.com/aretw0/tracker/pkg/core"
)

// Dashboard is the read-only progress view produced by each successful refresh.
type Dashboard struct {
	Lists      []core.List
	Totals     core.Totals
	ListTotals map[int64]core.Totals
	Changed    bool
	UpdatedAt  time.Time
}

func newDashboard(p *core.Projection, changed bool, now time.Time) Dashboard {
	d := Dashboard{
		Lists:      p.Lists,
		Totals:     core.ComputeTotals(p.Lists, p.Marked),
		ListTotals: make(map[int64]core.Totals, len(p.Lists)),
		Changed:    changed,
		UpdatedAt:  now,
	}
	for i := range p.Lists {
		d.ListTotals[p.Lists[i].ID] = core.ListTotalsOf(&p.Lists[i], p.Marked)
	}
	return d
}

// Clone returns a deep copy.
func (d Dashboard) Clone() Dashboard {
	out := d
	out.Lists = make([]core.List, len(d.Lists))
	for i, l := range d.Lists {
		out.Lists[i] = l.Clone()
	}
	out.ListTotals = make(map[int64]core.Totals, len(d.ListTotals))
	for k, v := range d.ListTotals {
		out.ListTotals[k] = v
	}
	return out
}

// Meta renders the overall "marked / total (pp.pp%)" line.
func (d Dashboard) Meta() string { return core.FormatMeta(d.Totals) }

// Counts renders the overall "(marked / total)".
func (d Dashboard) Counts() string { return core.FormatCounts(d.Totals) }

// Percent renders the overall percentage.
func (d Dashboard) Percent() string { return core.FormatPercent(d.Totals) }

// ListMeta renders the meta line of one list; unknown lists render as empty.
func (d Dashboard) ListMeta(id int64) string { return core.FormatMeta(d.ListTotals[id]) }

// ListCounts renders "(marked / total)" for one list.
func (d Dashboard) ListCounts(id int64) string { return core.FormatCounts(d.ListTotals[id]) }

// ListPercent renders the percentage of one list.
func (d Dashboard) ListPercent(id int64) string { return core.FormatPercent(d.ListTotals[id]) }
