package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/problem"
)

type compilePatternParams struct {
	Pattern  string `json:"pattern"`
	Language string `json:"language"`
}

func (s *Server) handleCompilePattern(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params compilePatternParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("compile_pattern", fmt.Errorf("invalid parameters: %w", err))
	}

	target, ok := s.languages.ForName(params.Language)
	if !ok {
		return errorResult("compile_pattern", fmt.Errorf("unknown language %q", params.Language))
	}

	source, name, err := s.resolvePatternSource(params.Pattern)
	if err != nil {
		return errorResult("compile_pattern", err)
	}
	libs, err := s.loadLibraries()
	if err != nil {
		return errorResult("compile_pattern", err)
	}

	p, logs, err := problem.Compile(source, libs, target, problem.CompileOptions{Name: name})
	if err != nil {
		return errorResult("compile_pattern", err)
	}

	diagnostics := make([]map[string]interface{}, 0, len(logs))
	for _, l := range logs {
		diagnostics = append(diagnostics, map[string]interface{}{
			"level":   l.Level,
			"message": l.Message,
		})
	}

	return jsonResult(map[string]interface{}{
		"success":      true,
		"name":         name,
		"language":     target.Name(),
		"hash":         p.Hash,
		"is_multifile": p.IsMultifile,
		"has_limit":    p.HasLimit,
		"diagnostics":  diagnostics,
	})
}

type runPatternParams struct {
	Pattern  string   `json:"pattern"`
	Language string   `json:"language"`
	Paths    []string `json:"paths"`
}

func (s *Server) handleApplyPattern(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runPattern(ctx, req, true)
}

func (s *Server) handleCheckPattern(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runPattern(ctx, req, false)
}

// runPattern backs both apply_pattern and check_pattern: the only
// difference between them is whether a Rewrite result is written back
// to disk.
func (s *Server) runPattern(ctx context.Context, req *mcp.CallToolRequest, write bool) (*mcp.CallToolResult, error) {
	operation := "check_pattern"
	if write {
		operation = "apply_pattern"
	}

	var params runPatternParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult(operation, fmt.Errorf("invalid parameters: %w", err))
	}
	if len(params.Paths) == 0 {
		return errorResult(operation, fmt.Errorf("paths must not be empty"))
	}

	source, name, err := s.resolvePatternSource(params.Pattern)
	if err != nil {
		return errorResult(operation, err)
	}
	libs, err := s.loadLibraries()
	if err != nil {
		return errorResult(operation, err)
	}

	byLang := make(map[lang.TargetLanguage][]string)
	for _, path := range params.Paths {
		target, err := s.resolveLanguage(params.Language, path)
		if err != nil {
			return errorResult(operation, err)
		}
		byLang[target] = append(byLang[target], path)
	}

	var matches []map[string]interface{}
	matched, rewritten := 0, 0
	for target, paths := range byLang {
		p, _, err := problem.Compile(source, libs, target, problem.CompileOptions{Name: name})
		if err != nil {
			return errorResult(operation, fmt.Errorf("compiling %s: %w", name, err))
		}

		err = p.ExecutePathsStreaming(ctx, paths, problem.StreamOptions{Concurrency: 4}, func(r problem.MatchResult) error {
			switch v := r.(type) {
			case problem.Match:
				matched++
				matches = append(matches, map[string]interface{}{"file": v.File, "kind": "match"})
			case problem.Rewrite:
				matched++
				entry := map[string]interface{}{"file": v.File, "kind": "rewrite"}
				if write {
					if err := os.WriteFile(v.File, []byte(v.Rewritten), 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", v.File, err)
					}
					entry["written"] = true
					rewritten++
				} else {
					entry["written"] = false
					entry["rewritten"] = v.Rewritten
				}
				matches = append(matches, entry)
			}
			return nil
		})
		if err != nil {
			return errorResult(operation, err)
		}
	}

	return jsonResult(map[string]interface{}{
		"success":   true,
		"matched":   matched,
		"rewritten": rewritten,
		"results":   matches,
	})
}

// resolvePatternSource treats pattern as a path to an existing .grit
// file relative to the project root when one exists, and otherwise as
// literal pattern source given directly by the caller.
func (s *Server) resolvePatternSource(pattern string) (source, name string, err error) {
	root := "."
	if s.cfg != nil && s.cfg.Project.Root != "" {
		root = s.cfg.Project.Root
	}
	candidates := []string{pattern}
	if !strings.HasSuffix(pattern, ".grit") {
		candidates = append(candidates, pattern+".grit")
	}
	for _, c := range candidates {
		path := c
		if !filepath.IsAbs(c) {
			path = filepath.Join(root, c)
		}
		if content, err := os.ReadFile(path); err == nil {
			return string(content), path, nil
		}
	}
	return pattern, "<pattern>", nil
}

// loadLibraries reads every *.grit file from each configured library
// path into a problem.Library, the way cmd/gritql's loadLibraries
// does for the command-line front end.
func (s *Server) loadLibraries() ([]problem.Library, error) {
	var libs []problem.Library
	if s.cfg == nil {
		return libs, nil
	}
	for _, l := range s.cfg.Libraries {
		entries, err := os.ReadDir(l.Path)
		if err != nil {
			return nil, fmt.Errorf("reading library %s: %w", l.Path, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".grit") {
				continue
			}
			name := e.Name()
			content, err := os.ReadFile(filepath.Join(l.Path, name))
			if err != nil {
				return nil, fmt.Errorf("reading library file %s: %w", name, err)
			}
			libs = append(libs, problem.Library{Name: strings.TrimSuffix(name, ".grit"), Source: string(content)})
		}
	}
	return libs, nil
}

func (s *Server) resolveLanguage(name, path string) (lang.TargetLanguage, error) {
	if name != "" {
		l, ok := s.languages.ForName(name)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		return l, nil
	}
	l, ok := s.languages.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("no language registered for %s (pass language)", path)
	}
	return l, nil
}
