// Package mcpserver exposes the Problem façade over the Model Context
// Protocol: compile_pattern, apply_pattern and check_pattern let an AI
// assistant caller compile and run a pattern the same way cmd/gritql
// does, without shelling out to it.
package mcpserver

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/gritql/internal/config"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/version"
)

// Server wraps an *mcp.Server with the project config and language
// registry its tool handlers need to resolve patterns and targets.
type Server struct {
	mcp       *mcp.Server
	cfg       *config.Config
	languages *lang.Registry
}

// NewServer builds a Server registered against cfg and ready to Run.
// languages is the registry tool handlers use to infer a file's
// TargetLanguage or look one up by name.
func NewServer(cfg *config.Config, languages *lang.Registry) *Server {
	s := &Server{
		cfg:       cfg,
		languages: languages,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "gritql",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves requests over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "compile_pattern",
		Description: "Compile a pattern against a target language and report whether it compiles, its content hash, and any analysis diagnostics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Pattern source, or a path to a .grit file under the project root",
				},
				"language": {
					Type:        "string",
					Description: "Target language (go, javascript, typescript, python, rust, java, csharp, cpp, php, zig)",
				},
			},
			Required: []string{"pattern", "language"},
		},
	}, s.handleCompilePattern)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "apply_pattern",
		Description: "Compile a pattern and apply it to the given files, rewriting matches in place, and report what changed.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Pattern source, or a path to a .grit file under the project root",
				},
				"language": {
					Type:        "string",
					Description: "Target language; inferred per file when omitted",
				},
				"paths": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Files to match against",
				},
			},
			Required: []string{"pattern", "paths"},
		},
	}, s.handleApplyPattern)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "check_pattern",
		Description: "Compile a pattern and report what apply_pattern would change, without writing anything.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Pattern source, or a path to a .grit file under the project root",
				},
				"language": {
					Type:        "string",
					Description: "Target language; inferred per file when omitted",
				},
				"paths": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Files to match against",
				},
			},
			Required: []string{"pattern", "paths"},
		},
	}, s.handleCheckPattern)
}
