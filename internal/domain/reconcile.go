package domain

import (
	"math"
	"sort"
	"time"
)

// DeriveMine filters the catalog down to the activities whose ID is a
// member of joined, preserving catalog order. IDs in joined that no
// longer match a catalog entry are simply excluded. Pure and idempotent.
func DeriveMine(catalog []Activity, joined []string) []Activity {
	member := make(map[string]struct{}, len(joined))
	for _, id := range joined {
		member[id] = struct{}{}
	}

	mine := make([]Activity, 0, len(joined))
	for _, activity := range catalog {
		if _, ok := member[activity.ID]; ok {
			mine = append(mine, activity)
		}
	}
	return mine
}

// TotalHours sums the hours over the given activities. Rows with a
// malformed hours value arrive from the remote boundary as zero; NaN is
// treated the same way so a bad row never poisons the total.
func TotalHours(activities []Activity) float64 {
	var total float64
	for _, activity := range activities {
		if math.IsNaN(activity.Hours) {
			continue
		}
		total += activity.Hours
	}
	return total
}

// TotalPaid sums payment amounts.
func TotalPaid(payments []Payment) float64 {
	var total float64
	for _, payment := range payments {
		if math.IsNaN(payment.Amount) {
			continue
		}
		total += payment.Amount
	}
	return total
}

// SortPaymentsByDateDesc returns a copy of payments ordered newest
// first. Ordering applies at render time only; the stored list keeps
// insertion order. Entries with unparseable dates sort last.
func SortPaymentsByDateDesc(payments []Payment) []Payment {
	out := make([]Payment, len(payments))
	copy(out, payments)
	sort.SliceStable(out, func(i, j int) bool {
		return paymentDate(out[i]).After(paymentDate(out[j]))
	})
	return out
}

func paymentDate(p Payment) time.Time {
	t, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
