package services_test

import (
	"context"
	"testing"
	"time"

	"rent-backend/internal/models"
	"rent-backend/internal/services"
	"rent-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := timeutil.ParseDate(s)
	require.NoError(t, err)
	return parsed
}

// Seeds four rents across two tenants: three for t1 in r1 (July, August,
// September) and one for t2 in r2 (July). The July t1 rent gets a partial
// payment so statuses differ.
func seedListFixture(t *testing.T, svc *services.RentService) (july, august, september, other *models.Rent) {
	t.Helper()
	july = createRent(t, svc, "t1", "r1", "1000", "2025-07-01", "2025-07-31", "2025-07-05")
	august = createRent(t, svc, "t1", "r1", "1200", "2025-08-01", "2025-08-31", "2025-08-05")
	september = createRent(t, svc, "t1", "r1", "800", "2025-09-01", "2025-09-30", "2025-09-05")
	other = createRent(t, svc, "t2", "r2", "2000", "2025-07-01", "2025-07-31", "2025-07-05")
	pay(t, svc, july.ID, "500")
	return
}

func TestListRentsFilters(t *testing.T) {
	svc, _ := newTestEnv()
	ctx := context.Background()
	july, _, _, other := seedListFixture(t, svc)

	t.Run("by tenant", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{TenantID: "t2"})
		require.NoError(t, err)
		require.Len(t, list.Rents, 1)
		assert.Equal(t, other.ID, list.Rents[0].ID)
	})

	t.Run("by status", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{Status: models.StatusPartial})
		require.NoError(t, err)
		require.Len(t, list.Rents, 1)
		assert.Equal(t, july.ID, list.Rents[0].ID)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := svc.ListRents(ctx, &models.RentFilter{Status: "BOGUS"})
		assert.Error(t, err)
	})

	t.Run("by due date range", func(t *testing.T) {
		start := mustParseDate(t, "2025-08-01")
		end := mustParseDate(t, "2025-09-30")
		list, err := svc.ListRents(ctx, &models.RentFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Len(t, list.Rents, 2)
	})

	t.Run("search by tenant name", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{Search: "rahul"})
		require.NoError(t, err)
		require.Len(t, list.Rents, 1)
		assert.Equal(t, other.ID, list.Rents[0].ID)
	})

	t.Run("search by room number", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{Search: "202"})
		require.NoError(t, err)
		require.Len(t, list.Rents, 1)
		assert.Equal(t, other.ID, list.Rents[0].ID)
	})

	t.Run("search with no hits", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{Search: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, list.Rents)
		assert.Equal(t, 0, list.Pagination.Total)
	})
}

func TestListRentsSortingAndPagination(t *testing.T) {
	svc, _ := newTestEnv()
	ctx := context.Background()
	seedListFixture(t, svc)

	t.Run("default sort is due date desc", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{})
		require.NoError(t, err)
		require.Len(t, list.Rents, 4)
		for i := 1; i < len(list.Rents); i++ {
			assert.False(t, list.Rents[i-1].DueDate.Before(list.Rents[i].DueDate))
		}
	})

	t.Run("sort by amount asc", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{SortBy: "amount", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, list.Rents, 4)
		for i := 1; i < len(list.Rents); i++ {
			assert.True(t, list.Rents[i-1].Amount.Cmp(list.Rents[i].Amount) <= 0)
		}
	})

	t.Run("unknown sort column falls back to due date", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{SortBy: "'; DROP TABLE rents; --"})
		require.NoError(t, err)
		assert.Len(t, list.Rents, 4)
	})

	t.Run("pagination", func(t *testing.T) {
		list, err := svc.ListRents(ctx, &models.RentFilter{Page: 1, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, list.Rents, 3)
		assert.Equal(t, 4, list.Pagination.Total)
		assert.Equal(t, 2, list.Pagination.TotalPages)

		list, err = svc.ListRents(ctx, &models.RentFilter{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, list.Rents, 1)

		list, err = svc.ListRents(ctx, &models.RentFilter{Page: 5, Limit: 3})
		require.NoError(t, err)
		assert.Empty(t, list.Rents)
		assert.Equal(t, 4, list.Pagination.Total)
	})

	t.Run("limit is capped", func(t *testing.T) {
		filter := &models.RentFilter{Limit: 10000}
		_, err := svc.ListRents(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 100, filter.Limit)
	})
}

func TestListRentsExcludesDeleted(t *testing.T) {
	svc, _ := newTestEnv()
	ctx := context.Background()
	july, _, _, _ := seedListFixture(t, svc)

	require.NoError(t, svc.DeleteRent(ctx, july.ID))

	list, err := svc.ListRents(ctx, &models.RentFilter{})
	require.NoError(t, err)
	assert.Len(t, list.Rents, 3)
	for _, r := range list.Rents {
		assert.NotEqual(t, july.ID, r.ID)
	}
}
