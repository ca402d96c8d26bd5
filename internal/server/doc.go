// Package server implements the MCP (Model Context Protocol) server that
// exposes the dataset operations as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Inspection:
//   - dataset_package_info: Size and label counts of one annotated image
//   - dataset_preview: Draw the annotations of one image into a new file
//
// Batch operations, one per job op. Their arguments are the fields of a
// job in a job file, plus an optional seed:
//   - dataset_crop_items, dataset_rotate, dataset_relabel
//   - dataset_strip_image_data, dataset_split
//   - dataset_mosaic, dataset_paste, dataset_synthesize
//   - dataset_stats
//
// Job files:
//   - dataset_run_job: Run every job of a JSON job file
//
// # Randomness
//
// All tool calls of a session draw from one RNG seeded when the server
// starts, so a session replayed with the same seed and the same calls writes
// the same files. A call carrying a seed argument uses a fresh RNG instead.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(batch.NewEnv(seed), version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
