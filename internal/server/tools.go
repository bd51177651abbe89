package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func outputPathProperty(what string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path of the PNG file to write the " + what + " to",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for later calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Frame and chroma analysis
		{
			Name:        "frame_locate",
			Description: "Find the solid red registration frame around a render. Returns the outer frame rectangle, the tightened inner rectangle, the frame color and its uniformity (standard deviation, 0 = solid).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Frame thickness in pixels (default 10)",
						"default":     10,
					},
					"max_deviation": map[string]interface{}{
						"type":        "number",
						"description": "Largest standard deviation accepted for a uniform frame (default 6.0)",
						"default":     6.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chroma_estimate",
			Description: "Locate the frame, then measure the green-screen color just inside it. Returns the frame, the measured RGB and HSV color, and the ring depth it was found at.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"max_deviation": map[string]interface{}{
						"type":        "number",
						"description": "Largest standard deviation accepted for a sampled ring (default 6.0)",
						"default":     6.0,
					},
					"max_inset": map[string]interface{}{
						"type":        "integer",
						"description": "Deepest sampled ring in pixels from the frame (default 20)",
						"default":     20,
					},
				},
				"required": []string{"path"},
			},
		},

		// Background removal and sheet assembly
		{
			Name:        "greenscreen_remove",
			Description: "Crop a render to the inside of its frame, make the green background transparent, soften green spill on the outline and write the result as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty(),
					"output_path": outputPathProperty("transparent image"),
				},
				"required": []string{"path", "output_path"},
			},
		},
		{
			Name:        "impostor_build",
			Description: "Process a set of framed renders and stack them into one power-of-two impostor texture written as PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the renders, one per face, in sheet order",
					},
					"output_path": outputPathProperty("impostor sheet"),
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Billboard width in meters (default 6.0)",
						"default":     6.0,
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Billboard height in meters (default 3.0)",
						"default":     3.0,
					},
					"rez": map[string]interface{}{
						"type":        "integer",
						"description": "Width of each face in pixels (default 64)",
						"default":     64,
					},
					"form": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"STAR", "TSTAR"},
						"description": "STAR: all faces are side views. TSTAR: the last two faces are top and bottom views",
						"default":     "STAR",
					},
					"skip_failed": map[string]interface{}{
						"type":        "boolean",
						"description": "Leave out renders that fail instead of aborting (default false)",
						"default":     false,
					},
				},
				"required": []string{"paths", "output_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
