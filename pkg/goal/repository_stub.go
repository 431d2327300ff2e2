package goal

import (
	"context"
	"fmt"
	"sort"
	"time"
)

type retrieveCall struct {
	Category   string
	StartMonth time.Time
	EndMonth   *time.Time
}

// RepositoryStub keeps goals in memory and records every storage call.
type RepositoryStub struct {
	nextId        int
	goals         map[string]Goal
	retrieveCalls []retrieveCall
	saveCalls     []Goal
	retrieveErr   error
	saveErr       error
}

func NewStubGoalRepo() *RepositoryStub {
	return &RepositoryStub{goals: map[string]Goal{}}
}

func (s *RepositoryStub) RetrieveCurrentGoalsForCategory(ctx context.Context, category string, startMonth time.Time, endMonth *time.Time) ([]Goal, error) {
	s.retrieveCalls = append(s.retrieveCalls, retrieveCall{category, startMonth, endMonth})
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	current := make([]Goal, 0)
	for _, goal := range s.goals {
		if goal.Category == category && goal.Overlaps(startMonth, endMonth) {
			current = append(current, goal)
		}
	}
	return current, nil
}

func (s *RepositoryStub) Save(ctx context.Context, goal Goal) (Goal, error) {
	s.saveCalls = append(s.saveCalls, goal)
	if s.saveErr != nil {
		return Goal{}, s.saveErr
	}
	s.nextId++
	goal.Id = fmt.Sprintf("goal-%d", s.nextId)
	s.goals[goal.Id] = goal
	return goal, nil
}

func (s *RepositoryStub) GetGoal(ctx context.Context, id string) (Goal, error) {
	if goal, exists := s.goals[id]; exists {
		return goal, nil
	}
	return Goal{}, ErrGoalNotFound
}

func (s *RepositoryStub) ListGoals(ctx context.Context) ([]Goal, error) {
	goals := make([]Goal, 0, len(s.goals))
	for _, goal := range s.goals {
		goals = append(goals, goal)
	}
	sort.Slice(goals, func(i, j int) bool {
		if !goals[i].StartMonth.Equal(goals[j].StartMonth) {
			return goals[i].StartMonth.Before(goals[j].StartMonth)
		}
		return goals[i].Category < goals[j].Category
	})
	return goals, nil
}

// Add stores a goal directly, bypassing call recording.
func (s *RepositoryStub) Add(goal Goal) Goal {
	s.nextId++
	goal.Id = fmt.Sprintf("goal-%d", s.nextId)
	s.goals[goal.Id] = goal
	return goal
}

func (s *RepositoryStub) Cleanup() {
	s.goals = map[string]Goal{}
	s.retrieveCalls = nil
	s.saveCalls = nil
	s.retrieveErr = nil
	s.saveErr = nil
}
