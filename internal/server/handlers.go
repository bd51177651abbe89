package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/impostor-maker/internal/chromakey"
	"github.com/ironsheep/impostor-maker/internal/detection"
	"github.com/ironsheep/impostor-maker/internal/imaging"
	"github.com/ironsheep/impostor-maker/internal/impostor"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_locate", "impostor_build").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Frame and chroma analysis
	case "frame_locate":
		return s.handleFrameLocate(args)
	case "chroma_estimate":
		return s.handleChromaEstimate(args)

	// Background removal and sheet assembly
	case "greenscreen_remove":
		return s.handleGreenscreenRemove(args)
	case "impostor_build":
		return s.handleImpostorBuild(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

func requirePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type dimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &dimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}

// === Frame and Chroma Handlers ===

type frameLocateArgs struct {
	Path         string   `json:"path"`
	Thickness    *int     `json:"thickness"`
	MaxDeviation *float64 `json:"max_deviation"`
}

func (s *Server) handleFrameLocate(args json.RawMessage) (interface{}, error) {
	var a frameLocateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	cfg := s.cfg
	if a.Thickness != nil {
		cfg.Thickness = *a.Thickness
	}
	if a.MaxDeviation != nil {
		cfg.FrameMaxDeviation = *a.MaxDeviation
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return detection.LocateFrame(img, cfg.FrameParams())
}

type chromaEstimateArgs struct {
	Path         string   `json:"path"`
	MaxDeviation *float64 `json:"max_deviation"`
	MaxInset     *int     `json:"max_inset"`
}

type chromaEstimateResult struct {
	Frame  *detection.FrameResult `json:"frame"`
	Chroma *chromakey.Estimate    `json:"chroma"`

	// MaskRange is the HSV range the background would be removed with.
	MaskRange imaging.ColorRange `json:"mask_range"`
}

func (s *Server) handleChromaEstimate(args json.RawMessage) (interface{}, error) {
	var a chromaEstimateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	cfg := s.cfg
	if a.MaxDeviation != nil {
		cfg.ChromaMaxDeviation = *a.MaxDeviation
	}
	if a.MaxInset != nil {
		cfg.ChromaMaxInset = *a.MaxInset
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	frame, err := detection.LocateFrame(img, cfg.FrameParams())
	if err != nil {
		return nil, err
	}
	est, err := chromakey.EstimateChroma(img, frame.Inner, cfg.EstimateParams())
	if err != nil {
		return nil, err
	}

	res := &chromaEstimateResult{Frame: frame, Chroma: est, MaskRange: cfg.ChromaRange}
	if cfg.AdaptiveChroma() {
		res.MaskRange = est.Band(cfg.ChromaTolerance)
	}
	return res, nil
}

// === Background Removal and Sheet Handlers ===

type greenscreenRemoveArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

type greenscreenRemoveResult struct {
	OutputPath string         `json:"output_path"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Tile       *impostor.Tile `json:"tile"`
}

func (s *Server) handleGreenscreenRemove(args json.RawMessage) (interface{}, error) {
	var a greenscreenRemoveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.OutputPath) == "" {
		return nil, errors.New("output_path is required")
	}

	b, err := impostor.New(s.cfg, impostor.WithLogger(s.log), impostor.WithCache(s.cache))
	if err != nil {
		return nil, err
	}
	tile, err := b.ProcessFile(a.Path)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(a.OutputPath, tile.Image); err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutputPath)

	bounds := tile.Image.Bounds()
	return &greenscreenRemoveResult{
		OutputPath: a.OutputPath,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Tile:       tile,
	}, nil
}

type impostorBuildArgs struct {
	Paths      []string `json:"paths"`
	OutputPath string   `json:"output_path"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Rez        *int     `json:"rez"`
	Form       *string  `json:"form"`
	SkipFailed *bool    `json:"skip_failed"`
}

type impostorBuildResult struct {
	OutputPath string          `json:"output_path"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Sheet      *impostor.Sheet `json:"sheet"`
}

func (s *Server) handleImpostorBuild(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a impostorBuildArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, impostor.ErrNoImages
	}
	if strings.TrimSpace(a.OutputPath) == "" {
		return nil, errors.New("output_path is required")
	}

	cfg := s.cfg
	cfg.Faces = len(a.Paths)
	if a.Width != nil {
		cfg.FrameWidth = *a.Width
	}
	if a.Height != nil {
		cfg.FrameHeight = *a.Height
	}
	if a.Rez != nil {
		cfg.Rez = *a.Rez
	}
	if a.Form != nil {
		cfg.Form = strings.ToUpper(*a.Form)
	}
	if a.SkipFailed != nil {
		cfg.SkipFailed = *a.SkipFailed
	}

	b, err := impostor.New(cfg, impostor.WithLogger(s.log), impostor.WithCache(s.cache))
	if err != nil {
		return nil, err
	}
	sheet, err := b.Build(ctx, a.Paths)
	if err != nil {
		return nil, err
	}
	if err := sheet.Save(a.OutputPath); err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutputPath)

	bounds := sheet.Image.Bounds()
	return &impostorBuildResult{
		OutputPath: a.OutputPath,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Sheet:      sheet,
	}, nil
}
