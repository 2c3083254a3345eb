package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/streak-scanner/internal/classify"
	"github.com/ironsheep/streak-scanner/internal/detection"
	"github.com/ironsheep/streak-scanner/internal/imaging"
	"github.com/ironsheep/streak-scanner/internal/normalize"
	"github.com/ironsheep/streak-scanner/internal/pipeline"
	"github.com/ironsheep/streak-scanner/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "streak_detect").
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
		s.log.WithField("tool", params.Name).WithError(err).Debug("Tool failed")
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
	case "image_info":
		return s.handleImageInfo(args)
	case "streak_detect":
		return s.handleStreakDetect(args)
	case "streak_profile":
		return s.handleStreakProfile(args)
	case "streak_scan_catalog":
		return s.handleStreakScanCatalog(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
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

// === Image Information ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection ===

type detectArgs struct {
	Path     string  `json:"path"`
	MinArea  int     `json:"min_area"`
	Policy   string  `json:"policy"`
	Constant float64 `json:"constant"`
}

// StreakDetectResult is the output of streak_detect.
type StreakDetectResult struct {
	Path           string             `json:"path"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Policy         string             `json:"policy"`
	Threshold      float64            `json:"threshold"`
	MinArea        int                `json:"min_area"`
	Accepted       []detection.Region `json:"accepted"`
	Rejected       []detection.Region `json:"rejected"`
	BorderRejected int                `json:"border_rejected"`
}

// detect segments a cached frame and splits its regions by area.
func (s *Server) detect(a detectArgs) (*imaging.Frame, *StreakDetectResult, error) {
	if a.MinArea <= 0 {
		a.MinArea = detection.DefaultMinArea
	}
	policy, err := detection.NewThresholdPolicy(a.Policy, a.Constant)
	if err != nil {
		return nil, nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}

	seg := detection.NewSegmenter(policy).Segment(frame)
	accepted, rejected := detection.PartitionRegions(seg.Regions, a.MinArea)
	return frame, &StreakDetectResult{
		Path:           a.Path,
		Width:          frame.Width,
		Height:         frame.Height,
		Policy:         policy.Name(),
		Threshold:      seg.Threshold,
		MinArea:        a.MinArea,
		Accepted:       accepted,
		Rejected:       rejected,
		BorderRejected: seg.BorderRejected,
	}, nil
}

func (s *Server) handleStreakDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, result, err := s.detect(a)
	return result, err
}

// === Normalization ===

type profileArgs struct {
	detectArgs
	Index   int      `json:"index"`
	Padding *float64 `json:"padding"`
	Scale   float64  `json:"scale"`
}

// StreakProfileResult is the output of streak_profile.
type StreakProfileResult struct {
	Index           int                 `json:"index"`
	Region          detection.Region    `json:"region"`
	Bounds          [4]int              `json:"bounds"` // x1, y1, x2, y2
	RotationDegrees float64             `json:"rotation_degrees"`
	Profile         []float64           `json:"profile"`
	Image           *imaging.CropResult `json:"image"`
}

func (s *Server) handleStreakProfile(args json.RawMessage) (interface{}, error) {
	var a profileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := normalize.DefaultPadding
	if a.Padding != nil {
		padding = *a.Padding
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must be >= 0 (got %g)", padding)
	}
	if a.Scale <= 0 {
		a.Scale = 1.0
	}

	frame, detected, err := s.detect(a.detectArgs)
	if err != nil {
		return nil, err
	}
	if a.Index < 1 || a.Index > len(detected.Accepted) {
		return nil, fmt.Errorf("index %d out of range: image has %d accepted streaks", a.Index, len(detected.Accepted))
	}
	region := detected.Accepted[a.Index-1]

	streak, err := normalize.Normalize(frame, region, padding)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(streak.Image.ToGray8(), a.Scale)
	if err != nil {
		return nil, err
	}

	b := streak.Bounds
	return &StreakProfileResult{
		Index:           a.Index,
		Region:          region,
		Bounds:          [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		RotationDegrees: streak.RotationDegrees,
		Profile:         streak.Profile,
		Image:           encoded,
	}, nil
}

// === Catalog Scan ===

type scanArgs struct {
	Catalog    string `json:"catalog"`
	Pattern    string `json:"pattern"`
	MinArea    int    `json:"min_area"`
	Policy     string `json:"policy"`
	ReportPath string `json:"report_path"`
}

// StreakScanResult is the output of streak_scan_catalog.
type StreakScanResult struct {
	Summary        string                   `json:"summary"`
	Rows           []report.FileStats       `json:"rows"`
	Events         []string                 `json:"events"`
	NoEvents       []string                 `json:"no_events"`
	Failed         []pipeline.FailedFile    `json:"failed"`
	Classification *classify.Classification `json:"classification"`
	ReportPath     string                   `json:"report_path,omitempty"`
}

func (s *Server) handleStreakScanCatalog(args json.RawMessage) (interface{}, error) {
	var a scanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Catalog == "" {
		return nil, fmt.Errorf("catalog is required")
	}
	policy, err := detection.NewThresholdPolicy(a.Policy, 0)
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Catalog:    a.Catalog,
		Pattern:    a.Pattern,
		ReportPath: a.ReportPath,
		MinArea:    a.MinArea,
		Padding:    normalize.DefaultPadding,
		Policy:     policy,
	}
	res, err := pipeline.NewRunner(opts, s.log, nil, nil).Run(context.Background())
	if err != nil {
		return nil, err
	}

	return &StreakScanResult{
		Summary:        res.Summary(),
		Rows:           res.Rows,
		Events:         res.Events,
		NoEvents:       res.NoEvents,
		Failed:         res.Failed,
		Classification: res.Classification,
		ReportPath:     a.ReportPath,
	}, nil
}
