// Package server implements the MCP (Model Context Protocol) server for the
// impostor pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes frame location,
// chroma estimation, background removal and sheet assembly as MCP tools, so
// an MCP client can inspect a render step by step before building a sheet.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Frame and Chroma Analysis:
//   - frame_locate: Find the registration frame and its uniformity
//   - chroma_estimate: Measure the green-screen color inside the frame
//
// Background Removal and Sheet Assembly:
//   - greenscreen_remove: Write one render with a transparent background
//   - impostor_build: Stack several renders into a power-of-two sheet
//
// Tool arguments override the matching fields of the server's base
// configuration for that call only.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
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
//	srv := server.New(config.Default(), logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
