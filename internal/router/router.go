package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/digiplanner/backend/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Stats  *apiHandler.StatsHandler
	Notes  *apiHandler.NotesHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/api/health", handlers.Health.Check)

	// Task routes
	r.GET("/api/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/tasks/due-soon", authMiddleware(handlers.Task.DueSoon))
	r.GET("/api/tasks/on-date/{date}", authMiddleware(handlers.Task.TasksOnDate))
	r.PUT("/api/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))

	// Stats routes
	r.GET("/api/stats", authMiddleware(handlers.Stats.GetStats))
	r.GET("/api/stats/category-breakdown", authMiddleware(handlers.Stats.CategoryBreakdown))
	r.GET("/api/stats/priority-breakdown", authMiddleware(handlers.Stats.PriorityBreakdown))
	r.GET("/api/stats/completion-trends", authMiddleware(handlers.Stats.CompletionTrends))
	r.GET("/api/stats/weekly-rates", authMiddleware(handlers.Stats.WeeklyRates))
	r.GET("/api/stats/average-completion", authMiddleware(handlers.Stats.AverageCompletion))

	// Calendar note routes
	r.GET("/api/calendar/notes", authMiddleware(handlers.Notes.GetNotes))
	r.POST("/api/calendar/notes", authMiddleware(handlers.Notes.SaveNote))
	r.GET("/api/calendar/notes/{date}", authMiddleware(handlers.Notes.GetNote))
	r.PUT("/api/calendar/notes/{date}", authMiddleware(handlers.Notes.SaveNote))
	r.DELETE("/api/calendar/notes/{date}", authMiddleware(handlers.Notes.DeleteNote))

	return r
}
