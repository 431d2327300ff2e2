package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Goal
	r.HandleFunc("/api/goal", deps.GoalHandler.ListGoals).Methods("GET")
	r.HandleFunc("/api/goal", deps.GoalHandler.CreateGoal).Methods("POST")
	r.HandleFunc("/api/goal/{goalId}", deps.GoalHandler.GetGoal).Methods("GET")
}
