package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by the
// per-image tools.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var minAreaProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Minimum pixel area of an accepted streak. Default 100",
	"default":     100,
}

var policyProperty = map[string]interface{}{
	"type":        "string",
	"description": "Threshold policy: 'otsu' (Otsu level / 5, favors faint streaks) or 'max-fraction' (0.085 x brightest sample, fewer noise blobs). Default 'otsu'",
	"enum":        []string{"otsu", "max-fraction"},
	"default":     "otsu",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_info",
			Description: "Load an image and return its dimensions, format, bit depth and intensity range. The decoded frame is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "streak_detect",
			Description: "Segment one image into streak candidates. Returns the threshold used, the accepted regions (area >= min_area, not touching the border) with bbox, centroid, axis lengths and orientation, and the regions rejected by area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty,
					"min_area": minAreaProperty,
					"policy":   policyProperty,
					"constant": map[string]interface{}{
						"type":        "number",
						"description": "Policy constant: Otsu divisor or max fraction. Default depends on policy",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "streak_profile",
			Description: "Normalize one accepted streak of an image: crop with padding, rotate its major axis to horizontal, trim to the minor axis band. Returns the normalized streak as base64 PNG and its brightness profile (column sums along the streak).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "1-based index of the streak among the accepted streaks returned by streak_detect",
					},
					"padding": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the bbox height/width added on every side before rotating. Default 0.1",
						"default":     0.1,
					},
					"min_area": minAreaProperty,
					"policy":   policyProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the returned image. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "streak_scan_catalog",
			Description: "Run the full two-pass scan over a catalog directory: detect streaks in every matching file, classify streak lengths against the corpus mean and standard deviation, and return the per-file table (total, short and long outliers), the events/no-events partition and any unreadable files. Files are never moved and no plots are written.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"catalog": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the catalog directory",
					},
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Glob selecting candidate files. Default '*.png'",
						"default":     "*.png",
					},
					"min_area": minAreaProperty,
					"policy":   policyProperty,
					"report_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path of the report file to write. Omit to skip writing",
					},
				},
				"required": []string{"catalog"},
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
