package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveMinePreservesCatalogOrder(t *testing.T) {
	catalog := []Activity{
		{ID: "3", Name: "Food drive", Hours: 4},
		{ID: "1", Name: "Park cleanup", Hours: 3},
		{ID: "2", Name: "Tutoring", Hours: 2},
	}

	mine := DeriveMine(catalog, []string{"2", "3"})

	require.Len(t, mine, 2)
	require.Equal(t, "3", mine[0].ID)
	require.Equal(t, "2", mine[1].ID)
}

func TestDeriveMineIgnoresStaleIDs(t *testing.T) {
	catalog := []Activity{
		{ID: "1", Name: "Park cleanup", Hours: 3},
		{ID: "2", Name: "Tutoring", Hours: 2},
	}

	mine := DeriveMine(catalog, []string{"1", "99"})

	require.Len(t, mine, 1)
	require.Equal(t, "1", mine[0].ID)
	require.InDelta(t, 3.0, TotalHours(mine), 1e-9)
}

func TestDeriveMineEmptyInputs(t *testing.T) {
	require.Empty(t, DeriveMine(nil, []string{"1"}))
	require.Empty(t, DeriveMine([]Activity{{ID: "1"}}, nil))
}

func TestTotalHoursSkipsNaN(t *testing.T) {
	activities := []Activity{
		{ID: "1", Hours: 2.5},
		{ID: "2", Hours: math.NaN()},
		{ID: "3", Hours: 1.5},
	}
	require.InDelta(t, 4.0, TotalHours(activities), 1e-9)
}

func TestTotalPaid(t *testing.T) {
	payments := []Payment{
		{ID: "a", Amount: 10},
		{ID: "b", Amount: 2.5},
	}
	require.InDelta(t, 12.5, TotalPaid(payments), 1e-9)
	require.Zero(t, TotalPaid(nil))
}

func TestSortPaymentsByDateDesc(t *testing.T) {
	payments := []Payment{
		{ID: "a", Date: "2024-01-05"},
		{ID: "b", Date: "2024-03-01"},
		{ID: "c", Date: "not-a-date"},
		{ID: "d", Date: "2024-02-10"},
	}

	sorted := SortPaymentsByDateDesc(payments)

	require.Equal(t, "b", sorted[0].ID)
	require.Equal(t, "d", sorted[1].ID)
	require.Equal(t, "a", sorted[2].ID)
	require.Equal(t, "c", sorted[3].ID)

	// Input unchanged.
	require.Equal(t, "a", payments[0].ID)
}
