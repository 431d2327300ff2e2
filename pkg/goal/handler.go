package goal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidGoalRequest = errors.New("invalid goal request")

type GoalDTO struct {
	Id         string          `json:"id,omitempty"`
	Category   string          `json:"category"`
	MonthLimit decimal.Decimal `json:"monthLimit"`
	// StartMonth is YYYY-MM-DD or YYYY-MM.
	StartMonth string  `json:"startMonth"`
	EndMonth   *string `json:"endMonth,omitempty"`
}

type Handler struct {
	service Service
}

func NewGoalHandler(service Service) *Handler {
	return &Handler{service}
}

// CreateGoal godoc
// @Summary Create a new spending goal
// @Description Create a monthly spending limit for a category. Months are normalized to the first day of the month.
// @Tags Goal
// @Accept json
// @Produce json
// @Param goal body GoalDTO true "Goal"
// @Success 201 {object} GoalDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 409 {string} string "Goal already exists for this category"
// @Router /api/goal [post]
func (handler *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new goal")
	w.Header().Set("Content-Type", "application/json")
	var goalDTO GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&goalDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	candidate, err := DTOToGoal(goalDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.service.CreateGoal(r.Context(), candidate)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateRange), errors.Is(err, ErrInvalidMonthLimit):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateActiveGoal):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Errorf("failed to create goal: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(GoalToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetGoal godoc
// @Summary Get a goal by ID
// @Tags Goal
// @Produce json
// @Param goalId path string true "Goal ID"
// @Success 200 {object} GoalDTO
// @Failure 404 {string} string "Goal Not Found"
// @Router /api/goal/{goalId} [get]
func (handler *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	goalId := mux.Vars(r)["goalId"]

	goal, err := handler.service.GetGoal(r.Context(), goalId)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(GoalToDTO(goal)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ListGoals godoc
// @Summary List all goals
// @Description Get all goals ordered by start month and category
// @Tags Goal
// @Produce json
// @Success 200 {array} GoalDTO
// @Router /api/goal [get]
func (handler *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing goals")
	w.Header().Set("Content-Type", "application/json")
	goals, err := handler.service.ListGoals(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	goalsDTO := make([]GoalDTO, 0, len(goals))
	for _, goal := range goals {
		goalsDTO = append(goalsDTO, GoalToDTO(goal))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(goalsDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func GoalToDTO(goal Goal) GoalDTO {
	var endMonth *string
	if !goal.IsOpenEnded() {
		end := goal.EndMonth.Format(time.DateOnly)
		endMonth = &end
	}
	return GoalDTO{
		Id:         goal.Id,
		Category:   goal.Category,
		MonthLimit: goal.MonthLimit,
		StartMonth: goal.StartMonth.Format(time.DateOnly),
		EndMonth:   endMonth,
	}
}

// DTOToGoal builds a candidate goal. The id in the DTO is ignored.
func DTOToGoal(goalDTO GoalDTO) (Goal, error) {
	category := strings.TrimSpace(goalDTO.Category)
	if category == "" {
		return Goal{}, fmt.Errorf("%w: category is required", ErrInvalidGoalRequest)
	}
	startMonth, err := ParseMonth(goalDTO.StartMonth)
	if err != nil {
		return Goal{}, fmt.Errorf("%w: start month: %v", ErrInvalidGoalRequest, err)
	}
	var endMonth *time.Time
	if goalDTO.EndMonth != nil && *goalDTO.EndMonth != "" {
		end, err := ParseMonth(*goalDTO.EndMonth)
		if err != nil {
			return Goal{}, fmt.Errorf("%w: end month: %v", ErrInvalidGoalRequest, err)
		}
		endMonth = &end
	}
	return Goal{
		Category:   category,
		MonthLimit: goalDTO.MonthLimit,
		StartMonth: startMonth,
		EndMonth:   endMonth,
	}, nil
}

// ParseMonth accepts a full date (2025-06-15) or a bare month (2025-06).
func ParseMonth(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD or YYYY-MM date", value)
	}
	return t, nil
}
