// Package server implements the MCP (Model Context Protocol) server for the
// streak scanner.
//
// This package provides a JSON-RPC 2.0 server that exposes streak detection,
// normalization and catalog classification through the MCP protocol, so an
// MCP client can inspect single frames and run scans interactively.
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
//   - image_info: Load a frame and report dimensions, bit depth and
//     intensity range
//   - streak_detect: Segment a frame; accepted and rejected regions with
//     their geometry
//   - streak_profile: Normalize one accepted streak; PNG plus brightness
//     profile
//   - streak_scan_catalog: Two-pass scan and classification of a catalog
//     directory
//
// streak_scan_catalog runs the same pipeline as the streak-scan command but
// never moves files or writes plots.
//
// # Frame Caching
//
// image_info, streak_detect and streak_profile share an in-memory cache of
// decoded frames keyed by path. The catalog scan reads files directly and
// leaves the cache alone. The cache persists for the lifetime of the server
// process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(log, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
