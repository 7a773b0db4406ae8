package core

import "fmt"

// ComputeTotals counts marked items across lists using marked as the source of truth.
// Objects present in several lists are counted once per list.
func ComputeTotals(lists []List, marked MarkedMap) Totals {
	var t Totals
	for i := range lists {
		lt := ListTotalsOf(&lists[i], marked)
		t.Marked += lt.Marked
		t.Total += lt.Total
	}
	return t
}

// ListTotalsOf counts the marked items of a single list.
func ListTotalsOf(list *List, marked MarkedMap) Totals {
	t := Totals{Total: len(list.Items)}
	for hashID := range list.Items {
		if marked[hashID] {
			t.Marked++
		}
	}
	return t
}

// Percent returns the marked share in percent, 0 when there is nothing to track.
func (t Totals) Percent() float64 {
	if t.Total == 0 {
		return 0
	}
	return 100 * float64(t.Marked) / float64(t.Total)
}

// FormatMeta renders "marked / total (pp.pp%)".
func FormatMeta(t Totals) string {
	if t.Total == 0 {
		return "(0 / 0) 0%"
	}
	return fmt.Sprintf("%d / %d (%.2f%%)", t.Marked, t.Total, t.Percent())
}

// FormatCounts renders "(marked / total)".
func FormatCounts(t Totals) string {
	return fmt.Sprintf("(%d / %d)", t.Marked, t.Total)
}

// FormatPercent renders "pp.pp%".
func FormatPercent(t Totals) string {
	if t.Total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", t.Percent())
}
