package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrGoalNotFound = errors.New("goal not found")

// Repository is the storage contract used when creating goals.
type Repository interface {
	// RetrieveCurrentGoalsForCategory returns the goals of the category that are active at any
	// month between startMonth and endMonth (inclusive). A nil endMonth means no upper bound.
	RetrieveCurrentGoalsForCategory(ctx context.Context, category string, startMonth time.Time, endMonth *time.Time) ([]Goal, error)
	// Save stores the goal under a newly assigned id and returns the stored goal.
	Save(ctx context.Context, goal Goal) (Goal, error)
}

type Finder interface {
	GetGoal(ctx context.Context, id string) (Goal, error)
	ListGoals(ctx context.Context) ([]Goal, error)
}

type Store interface {
	Repository
	Finder
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewGoalRepo(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectGoal = `SELECT id::text, category, month_limit::text, start_month, end_month FROM goal`

func (r RepositoryImpl) RetrieveCurrentGoalsForCategory(ctx context.Context, category string, startMonth time.Time, endMonth *time.Time) ([]Goal, error) {
	query := selectGoal + `
			  WHERE category = $1
			    AND ($3::date IS NULL OR start_month <= $3::date)
			    AND (end_month IS NULL OR end_month >= $2::date)
			  ORDER BY start_month`
	rows, err := r.db.Query(ctx, query, category, startMonth, endMonth)
	if err != nil {
		err := fmt.Errorf("could not query goals: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectGoals(rows)
}

func (r RepositoryImpl) Save(ctx context.Context, goal Goal) (Goal, error) {
	query := `INSERT INTO goal (id, category, month_limit, start_month, end_month)
			  VALUES ($1::uuid, $2, $3::numeric, $4, $5)
			  RETURNING month_limit::text`

	goal.Id = uuid.NewString()
	var storedLimit string
	err := r.db.QueryRow(ctx, query,
		goal.Id,
		goal.Category,
		goal.MonthLimit.String(),
		goal.StartMonth,
		goal.EndMonth,
	).Scan(&storedLimit)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Goal{}, err
	}

	goal.MonthLimit, err = decimal.NewFromString(storedLimit)
	if err != nil {
		err := fmt.Errorf("invalid month limit %q stored for goal %s: %w", storedLimit, goal.Id, err)
		log.Error(err)
		return Goal{}, err
	}
	return goal, nil
}

func (r RepositoryImpl) GetGoal(ctx context.Context, id string) (Goal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Goal{}, ErrGoalNotFound
	}
	rows, err := r.db.Query(ctx, selectGoal+` WHERE id = $1::uuid`, id)
	if err != nil {
		err := fmt.Errorf("could not query goal: %w", err)
		log.Error(err)
		return Goal{}, err
	}
	goals, err := collectGoals(rows)
	if err != nil {
		return Goal{}, err
	}
	if len(goals) == 0 {
		return Goal{}, ErrGoalNotFound
	}
	return goals[0], nil
}

func (r RepositoryImpl) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := r.db.Query(ctx, selectGoal+` ORDER BY start_month, category`)
	if err != nil {
		err := fmt.Errorf("could not query goals: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectGoals(rows)
}

func collectGoals(rows pgx.Rows) ([]Goal, error) {
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		var (
			goal       Goal
			monthLimit string
			endMonth   *time.Time
		)
		if err := rows.Scan(&goal.Id, &goal.Category, &monthLimit, &goal.StartMonth, &endMonth); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		limit, err := decimal.NewFromString(monthLimit)
		if err != nil {
			err := fmt.Errorf("invalid month limit %q stored for goal %s: %w", monthLimit, goal.Id, err)
			log.Error(err)
			return nil, err
		}
		goal.MonthLimit = limit
		goal.EndMonth = endMonth
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return goals, nil
}
