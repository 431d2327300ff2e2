package app

import (
	"github.com/mygoals/mygoals/internal/utils"
	"github.com/mygoals/mygoals/pkg/goal"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock utils.Clock

	GoalStore   goal.Store
	GoalService goal.Service
	GoalHandler *goal.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(goalStore goal.Store) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}

	deps.GoalStore = goalStore
	deps.GoalService = goal.NewGoalService(deps.GoalStore, deps.Clock)
	deps.GoalHandler = goal.NewGoalHandler(deps.GoalService)

	return deps
}
