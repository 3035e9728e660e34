// Package mcp exposes training data to language model clients over the
// Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LoadProgress", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LoadProgress strength training server. Query the exercise catalog, logged workout sets, personal records, volume and progression analytics. Weights are in kilograms. Exercises can be referenced by name or id."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetVolumeMetrics, Handler: h.getVolumeMetrics},
		server.ServerTool{Tool: toolGetMuscleGroupVolume, Handler: h.getMuscleGroupVolume},
		server.ServerTool{Tool: toolGetExerciseProgression, Handler: h.getExerciseProgression},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resCurrentRecords, Handler: h.currentRecords},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP, for mounting at /mcp.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"loadprogress://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workout sets from the last 14 days, with exercise names"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"loadprogress://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises with muscle groups, equipment and form cues"),
	mcp.WithMIMEType("application/json"),
)

var resCurrentRecords = mcp.NewResource(
	"loadprogress://current_records",
	"Current Records",
	mcp.WithResourceDescription("Standing personal records (estimated 1RM, session volume and best weight per rep count) for every exercise with history"),
	mcp.WithMIMEType("application/json"),
)
