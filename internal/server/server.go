// Package server exposes the planner over a stateless JSON API: the client
// holds the authoritative inventory and ships it with every request, the
// server ranks or mutates it and ships it back. Nothing is read from or
// written to the store here.
package server

import (
	"github.com/gin-gonic/gin"
)

// Server is the assistant HTTP API.
type Server struct {
	router *gin.Engine
}

func New() *Server {
	router := gin.Default()

	s := &Server{router: router}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.POST("/tasks", s.handleAddTask)
		api.POST("/tasks/priority", s.handlePriority)
		api.POST("/tasks/complete", s.handleComplete)
		api.POST("/tasks/suggest", s.handleSuggest)
	}

	return s
}

// Run starts listening on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() *gin.Engine {
	return s.router
}
