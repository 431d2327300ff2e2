package goal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mygoals/mygoals/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var goalRepoStub = NewStubGoalRepo()

var clock *utils.MockClock

var service Service

func setup(t *testing.T) func() {
	clock = utils.NewMockClock(2025, time.June, 10)
	service = NewGoalService(goalRepoStub, clock)
	return func() {
		t.Log("Teardown after test")
		goalRepoStub.Cleanup()
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func assertNoStorageCalls(t *testing.T) {
	t.Helper()
	assert.Empty(t, goalRepoStub.retrieveCalls, "retrieve should not be called")
	assert.Empty(t, goalRepoStub.saveCalls, "save should not be called")
}

func TestServiceImpl_CreateGoal(t *testing.T) {
	t.Run("should create a goal without end month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 15)}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, "Food", created.Category)
		assert.True(t, decimal.NewFromInt(200).Equal(created.MonthLimit))
		assert.Equal(t, date(2025, time.June, 1), created.StartMonth)
		assert.Nil(t, created.EndMonth)

		require.Len(t, goalRepoStub.retrieveCalls, 1)
		assert.Equal(t, retrieveCall{Category: "Food", StartMonth: date(2025, time.June, 1)}, goalRepoStub.retrieveCalls[0])
		require.Len(t, goalRepoStub.saveCalls, 1)
		assert.Empty(t, goalRepoStub.saveCalls[0].Id)
		assert.Equal(t, date(2025, time.June, 1), goalRepoStub.saveCalls[0].StartMonth)
		assert.Nil(t, goalRepoStub.saveCalls[0].EndMonth)
	})

	t.Run("should create a goal with end month normalized to first day", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{
			Category:   "Food",
			MonthLimit: decimal.NewFromInt(200),
			StartMonth: date(2025, time.June, 15),
			EndMonth:   datePtr(2025, time.September, 30),
		}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		require.NotNil(t, created.EndMonth)
		assert.Equal(t, date(2025, time.September, 1), *created.EndMonth)

		require.Len(t, goalRepoStub.retrieveCalls, 1)
		call := goalRepoStub.retrieveCalls[0]
		assert.Equal(t, date(2025, time.June, 1), call.StartMonth)
		require.NotNil(t, call.EndMonth)
		assert.Equal(t, date(2025, time.September, 1), *call.EndMonth)
	})

	t.Run("should accept start month equal to the current month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(10), StartMonth: date(2025, time.June, 1)}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.June, 1), created.StartMonth)
	})

	t.Run("should accept start and end in the same month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given - end day is earlier than start day but both fall in July
		candidate := Goal{
			Category:   "Food",
			MonthLimit: decimal.NewFromInt(10),
			StartMonth: date(2025, time.July, 20),
			EndMonth:   datePtr(2025, time.July, 5),
		}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		assert.Equal(t, created.StartMonth, *created.EndMonth)
	})

	t.Run("should not modify the candidate goal", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		endMonth := datePtr(2025, time.August, 17)
		candidate := Goal{Id: "client-id", Category: "Food", MonthLimit: decimal.NewFromInt(10), StartMonth: date(2025, time.June, 15), EndMonth: endMonth}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.June, 15), candidate.StartMonth)
		assert.Equal(t, date(2025, time.August, 17), *endMonth)
		assert.NotSame(t, endMonth, created.EndMonth)
		assert.Empty(t, goalRepoStub.saveCalls[0].Id)
	})

	t.Run("should reject start month before the current month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.May, 31)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrStartMonthBeforeCurrentMonth)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
		assertNoStorageCalls(t)
	})

	t.Run("should reject end month before start month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{
			Category:   "Food",
			MonthLimit: decimal.NewFromInt(200),
			StartMonth: date(2025, time.July, 1),
			EndMonth:   datePtr(2025, time.June, 1),
		}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrEndMonthBeforeStartMonth)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
		assertNoStorageCalls(t)
	})

	t.Run("should reject negative month limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(-5), StartMonth: date(2025, time.June, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrInvalidMonthLimit)
		assertNoStorageCalls(t)
	})

	t.Run("should reject zero month limit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.Zero, StartMonth: date(2025, time.June, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrInvalidMonthLimit)
		assertNoStorageCalls(t)
	})

	t.Run("should report start month error before month limit error", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(-5), StartMonth: date(2025, time.May, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrStartMonthBeforeCurrentMonth)
		assert.NotErrorIs(t, err, ErrInvalidMonthLimit)
		assertNoStorageCalls(t)
	})

	t.Run("should report end month error before month limit error", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{
			Category:   "Food",
			MonthLimit: decimal.Zero,
			StartMonth: date(2025, time.July, 1),
			EndMonth:   datePtr(2025, time.June, 1),
		}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrEndMonthBeforeStartMonth)
		assert.NotErrorIs(t, err, ErrInvalidMonthLimit)
		assertNoStorageCalls(t)
	})

	t.Run("should reject goal overlapping an active goal of the same category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		goalRepoStub.Add(Goal{Category: "Food", MonthLimit: decimal.NewFromInt(100), StartMonth: date(2025, time.June, 1)})
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.August, 3)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrDuplicateActiveGoal)
		require.Len(t, goalRepoStub.retrieveCalls, 1)
		assert.Equal(t, retrieveCall{Category: "Food", StartMonth: date(2025, time.August, 1)}, goalRepoStub.retrieveCalls[0])
		assert.Empty(t, goalRepoStub.saveCalls)
	})

	t.Run("should create goal when existing goal of the category ended before", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		goalRepoStub.Add(Goal{
			Category:   "Food",
			MonthLimit: decimal.NewFromInt(100),
			StartMonth: date(2025, time.June, 1),
			EndMonth:   datePtr(2025, time.July, 1),
		})
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.August, 1)}

		// when
		created, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
	})

	t.Run("should create goal when active goal belongs to another category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		goalRepoStub.Add(Goal{Category: "Rent", MonthLimit: decimal.NewFromInt(900), StartMonth: date(2025, time.June, 1)})
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		require.NoError(t, err)
	})

	t.Run("should return retrieve error unchanged and not save", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		storageErr := errors.New("connection refused")
		goalRepoStub.retrieveErr = storageErr
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.Same(t, storageErr, err)
		assert.Len(t, goalRepoStub.retrieveCalls, 1)
		assert.Empty(t, goalRepoStub.saveCalls)
	})

	t.Run("should return save error unchanged", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		storageErr := errors.New("disk full")
		goalRepoStub.saveErr = storageErr
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)}

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.Same(t, storageErr, err)
		assert.Len(t, goalRepoStub.saveCalls, 1)
	})

	t.Run("should use the clock at call time to decide the current month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		candidate := Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)}
		clock.SetNow(time.Date(2025, time.July, 1, 0, 0, 1, 0, time.UTC))

		// when
		_, err := service.CreateGoal(ctx, candidate)

		// then
		assert.ErrorIs(t, err, ErrStartMonthBeforeCurrentMonth)
	})
}

func TestServiceImpl_CreateGoal_Examples(t *testing.T) {
	t.Run("open-ended goal is normalized and stored", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		clock.SetNow(date(2025, time.June, 1))

		created, err := service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 15)})

		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, "Food", created.Category)
		assert.True(t, decimal.NewFromInt(200).Equal(created.MonthLimit))
		assert.Equal(t, date(2025, time.June, 1), created.StartMonth)
		assert.Nil(t, created.EndMonth)
	})

	t.Run("start in a past month fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.May, 1)})

		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("negative limit fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(-5), StartMonth: date(2025, time.June, 1)})

		assert.ErrorIs(t, err, ErrInvalidMonthLimit)
	})

	t.Run("end before start fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreateGoal(ctx, Goal{
			Category:   "Food",
			MonthLimit: decimal.NewFromInt(200),
			StartMonth: date(2025, time.July, 1),
			EndMonth:   datePtr(2025, time.June, 1),
		})

		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("existing goal for the category fails without saving", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		goalRepoStub.Add(Goal{Category: "Food", MonthLimit: decimal.NewFromInt(50), StartMonth: date(2025, time.June, 1)})

		_, err := service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)})

		assert.ErrorIs(t, err, ErrDuplicateActiveGoal)
		assert.Empty(t, goalRepoStub.saveCalls)
	})
}

func TestServiceImpl_GetGoal(t *testing.T) {
	t.Run("should get a created goal", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)})
		require.NoError(t, err)

		// when
		result, err := service.GetGoal(ctx, created.Id)

		// then
		assert.NoError(t, err)
		assert.Equal(t, created, result)
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetGoal(ctx, "unknown")

		// then
		assert.ErrorIs(t, err, ErrGoalNotFound)
	})
}

func TestServiceImpl_ListGoals(t *testing.T) {
	t.Run("should list goals ordered by start month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.CreateGoal(ctx, Goal{Category: "Rent", MonthLimit: decimal.NewFromInt(900), StartMonth: date(2025, time.August, 1)})
		require.NoError(t, err)
		_, err = service.CreateGoal(ctx, Goal{Category: "Food", MonthLimit: decimal.NewFromInt(200), StartMonth: date(2025, time.June, 1)})
		require.NoError(t, err)

		// when
		goals, err := service.ListGoals(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, goals, 2)
		assert.Equal(t, "Food", goals[0].Category)
		assert.Equal(t, "Rent", goals[1].Category)
	})
}
