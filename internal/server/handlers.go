package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/dataset-aug/internal/batch"
	"github.com/ironsheep/dataset-aug/internal/config"
	"github.com/ironsheep/dataset-aug/internal/logging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dataset_mosaic").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		logging.Warnf("%s: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "dataset_package_info":
		return s.handlePackageInfo(args)
	case "dataset_preview":
		return s.handlePreview(args)
	case "dataset_run_job":
		return s.handleRunJob(args)
	}
	if op, ok := toolOps[name]; ok {
		return s.handleBatch(op, args)
	}
	return nil, fmt.Errorf("unknown tool: %s", name)
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs rejects unknown fields so a misspelt parameter fails the call
// instead of being ignored.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// envFor returns the session env, or a fresh one when the call carries its
// own seed.
func (s *Server) envFor(seed *uint64) batch.Env {
	if seed == nil {
		return s.env
	}
	env := s.env
	env.Seed = *seed
	env.RNG = batch.NewRNG(*seed)
	logging.Opsf("seed %d (from call)", *seed)
	return env
}

type pathArgs struct {
	Path   string `json:"path"`
	Output string `json:"output,omitempty"`
}

func (s *Server) handlePackageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return batch.Info(a.Path)
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Output == "" {
		return nil, fmt.Errorf("path and output are required")
	}
	if err := batch.Preview(a.Path, a.Output); err != nil {
		return nil, err
	}
	return map[string]string{"output": a.Output}, nil
}

// jobArgs are the arguments of every batch tool: the job fields plus an
// optional per-call seed.
type jobArgs struct {
	config.Job
	Seed *uint64 `json:"seed,omitempty"`
}

func (s *Server) handleBatch(op config.Op, args json.RawMessage) (interface{}, error) {
	var a jobArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	a.Op = op
	return batch.Run(a.Job, s.envFor(a.Seed))
}

type runJobArgs struct {
	Config string `json:"config"`
}

func (s *Server) handleRunJob(args json.RawMessage) (interface{}, error) {
	var a runJobArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Config == "" {
		return nil, fmt.Errorf("config is required")
	}
	f, err := config.Load(a.Config)
	if err != nil {
		return nil, err
	}
	return batch.RunFile(f, s.envFor(f.Seed))
}
