package goal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const sqliteDateLayout = "2006-01-02"

// SQLiteRepositoryImpl stores goals in a SQLite database. Months are kept as YYYY-MM-DD text so
// that string comparison matches calendar order.
type SQLiteRepositoryImpl struct {
	db *sql.DB
}

func NewSQLiteGoalRepo(db *sql.DB) *SQLiteRepositoryImpl {
	return &SQLiteRepositoryImpl{db: db}
}

const selectSQLiteGoal = `SELECT id, category, month_limit, start_month, end_month FROM goal`

func (r SQLiteRepositoryImpl) RetrieveCurrentGoalsForCategory(ctx context.Context, category string, startMonth time.Time, endMonth *time.Time) ([]Goal, error) {
	query := selectSQLiteGoal + `
			  WHERE category = ?
			    AND (? IS NULL OR start_month <= ?)
			    AND (end_month IS NULL OR end_month >= ?)
			  ORDER BY start_month`
	endParam := dateParam(endMonth)
	rows, err := r.db.QueryContext(ctx, query, category, endParam, endParam, startMonth.Format(sqliteDateLayout))
	if err != nil {
		err := fmt.Errorf("could not query goals: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectSQLiteGoals(rows)
}

func (r SQLiteRepositoryImpl) Save(ctx context.Context, goal Goal) (Goal, error) {
	query := `INSERT INTO goal (id, category, month_limit, start_month, end_month) VALUES (?, ?, ?, ?, ?)`

	goal.Id = uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		goal.Id,
		goal.Category,
		goal.MonthLimit.String(),
		goal.StartMonth.Format(sqliteDateLayout),
		dateParam(goal.EndMonth),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Goal{}, err
	}
	return goal, nil
}

func (r SQLiteRepositoryImpl) GetGoal(ctx context.Context, id string) (Goal, error) {
	row := r.db.QueryRowContext(ctx, selectSQLiteGoal+` WHERE id = ?`, id)
	goal, err := scanSQLiteGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Goal{}, ErrGoalNotFound
		}
		return Goal{}, err
	}
	return goal, nil
}

func (r SQLiteRepositoryImpl) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := r.db.QueryContext(ctx, selectSQLiteGoal+` ORDER BY start_month, category`)
	if err != nil {
		err := fmt.Errorf("could not query goals: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectSQLiteGoals(rows)
}

func dateParam(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(sqliteDateLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGoal(row rowScanner) (Goal, error) {
	var (
		goal       Goal
		monthLimit string
		startMonth string
		endMonth   sql.NullString
	)
	if err := row.Scan(&goal.Id, &goal.Category, &monthLimit, &startMonth, &endMonth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Goal{}, err
		}
		err := fmt.Errorf("error scanning row: %w", err)
		log.Error(err)
		return Goal{}, err
	}

	limit, err := decimal.NewFromString(monthLimit)
	if err != nil {
		return Goal{}, fmt.Errorf("invalid month limit %q stored for goal %s: %w", monthLimit, goal.Id, err)
	}
	goal.MonthLimit = limit

	goal.StartMonth, err = time.Parse(sqliteDateLayout, startMonth)
	if err != nil {
		return Goal{}, fmt.Errorf("invalid start month %q stored for goal %s: %w", startMonth, goal.Id, err)
	}
	if endMonth.Valid {
		end, err := time.Parse(sqliteDateLayout, endMonth.String)
		if err != nil {
			return Goal{}, fmt.Errorf("invalid end month %q stored for goal %s: %w", endMonth.String, goal.Id, err)
		}
		goal.EndMonth = &end
	}
	return goal, nil
}

func collectSQLiteGoals(rows *sql.Rows) ([]Goal, error) {
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		goal, err := scanSQLiteGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return goals, nil
}
