package goal

import (
	"context"
	"errors"
	"fmt"

	"github.com/mygoals/mygoals/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidDateRange = errors.New("invalid date range")
var ErrStartMonthBeforeCurrentMonth = fmt.Errorf("%w: start month is before the current month", ErrInvalidDateRange)
var ErrEndMonthBeforeStartMonth = fmt.Errorf("%w: end month must be after start month", ErrInvalidDateRange)
var ErrInvalidMonthLimit = errors.New("month limit must be greater than 0")
var ErrDuplicateActiveGoal = errors.New("there is already a goal for this category in this month")

type Service interface {
	// CreateGoal normalizes and validates the candidate and stores it when no active goal
	// of the same category overlaps its months.
	CreateGoal(ctx context.Context, candidate Goal) (Goal, error)
	GetGoal(ctx context.Context, id string) (Goal, error)
	ListGoals(ctx context.Context) ([]Goal, error)
}

type ServiceImpl struct {
	store Store
	clock utils.Clock
}

func NewGoalService(store Store, clock utils.Clock) Service {
	return &ServiceImpl{store: store, clock: clock}
}

// CreateGoal runs the checks in a fixed order and stops at the first failure.
// Storage is only touched once every local check has passed.
func (s *ServiceImpl) CreateGoal(ctx context.Context, candidate Goal) (Goal, error) {
	goal := candidate.Normalized()
	log.Debugf("creating goal for category %q starting %s", goal.Category, goal.StartMonth.Format("2006-01"))

	if err := s.validateDates(goal); err != nil {
		log.Warnf("rejected goal for category %q: %v", goal.Category, err)
		return Goal{}, err
	}
	if err := validateMonthLimit(goal); err != nil {
		log.Warnf("rejected goal for category %q: %v", goal.Category, err)
		return Goal{}, err
	}

	current, err := s.store.RetrieveCurrentGoalsForCategory(ctx, goal.Category, goal.StartMonth, goal.EndMonth)
	if err != nil {
		return Goal{}, err
	}
	if len(current) > 0 {
		log.Warnf("rejected goal for category %q: %d active goal(s) overlap", goal.Category, len(current))
		return Goal{}, ErrDuplicateActiveGoal
	}

	return s.store.Save(ctx, goal)
}

func (s *ServiceImpl) GetGoal(ctx context.Context, id string) (Goal, error) {
	return s.store.GetGoal(ctx, id)
}

func (s *ServiceImpl) ListGoals(ctx context.Context) ([]Goal, error) {
	return s.store.ListGoals(ctx)
}

func (s *ServiceImpl) validateDates(goal Goal) error {
	currentMonth := FirstOfMonth(s.clock.Now())
	if goal.StartMonth.Before(currentMonth) {
		return ErrStartMonthBeforeCurrentMonth
	}
	if !goal.IsOpenEnded() && goal.EndMonth.Before(goal.StartMonth) {
		return ErrEndMonthBeforeStartMonth
	}
	return nil
}

func validateMonthLimit(goal Goal) error {
	if !goal.MonthLimit.IsPositive() {
		return ErrInvalidMonthLimit
	}
	return nil
}
