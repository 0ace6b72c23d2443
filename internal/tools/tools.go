// Package tools exposes the render Manager as MCP tools. Every tool answers
// with a text report; failures are described in the text, never returned
// as protocol errors.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"reel/internal/pkg/logger"
	"reel/internal/render"
)

type ExecuteArgs struct {
	ManimCode string `json:"manim_code" jsonschema:"the Manim Python source; must import manim and define a Scene subclass"`
	Quality   string `json:"quality,omitempty" jsonschema:"low, medium (default), high or production; the *_quality spellings are accepted"`
	Renderer  string `json:"renderer,omitempty" jsonschema:"cairo (default) or opengl"`
}

type ListScenesArgs struct {
	ManimCode string `json:"manim_code" jsonschema:"the Manim Python source to inspect"`
}

type CleanupArgs struct {
	Directory string `json:"directory,omitempty" jsonschema:"job directory to remove; omit to remove every directory created by this server"`
}

type noArgs struct{}

var (
	executeTool = &mcp.Tool{
		Name:        "execute_manim_code",
		Description: "Render a Manim scene script to video. Returns the job directory, the video file name and its size.",
	}
	listScenesTool = &mcp.Tool{
		Name:        "list_manim_scenes",
		Description: "List the scenes defined in a Manim script without rendering them.",
	}
	helpTool = &mcp.Tool{
		Name:        "get_manim_help",
		Description: "Describe quality levels, renderers and the requirements a Manim script must meet.",
	}
	cleanupTool = &mcp.Tool{
		Name:        "cleanup_manim_temp_dir",
		Description: "Remove a render job directory, or every directory rendered by this server when none is given.",
	}
	directoryInfoTool = &mcp.Tool{
		Name:        "get_output_directory_info",
		Description: "Summarize the output directory: file count, video count and the most recent videos.",
	}
)

// Handlers binds the tool handlers to a Manager.
type Handlers struct {
	mgr *render.Manager
	log *logger.Logger
}

func NewHandlers(mgr *render.Manager, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Discard()
	}
	return &Handlers{mgr: mgr, log: log.WithComponent("tools")}
}

// Register adds every tool to server.
func Register(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server, executeTool, h.Execute)
	mcp.AddTool(server, listScenesTool, h.ListScenes)
	mcp.AddTool(server, helpTool, h.Help)
	mcp.AddTool(server, cleanupTool, h.Cleanup)
	mcp.AddTool(server, directoryInfoTool, h.DirectoryInfo)
}

// NewServer builds an MCP server with the render tools registered.
func NewServer(name, version string, h *Handlers) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	Register(server, h)
	return server
}

func (h *Handlers) Execute(ctx context.Context, req *mcp.CallToolRequest, args ExecuteArgs) (*mcp.CallToolResult, any, error) {
	out, err := h.mgr.Execute(ctx, render.Request{
		Code:    args.ManimCode,
		Quality: args.Quality,
		Backend: args.Renderer,
	})
	if err != nil {
		h.log.Warn("execute_manim_code failed", "error", err.Error())
	}
	return text(ExecuteReport(out, err, h.mgr.Timeout())), nil, nil
}

func (h *Handlers) ListScenes(ctx context.Context, req *mcp.CallToolRequest, args ListScenesArgs) (*mcp.CallToolResult, any, error) {
	out, err := h.mgr.ListScenes(ctx, args.ManimCode)
	return text(listScenesReport(out, err)), nil, nil
}

func (h *Handlers) Help(ctx context.Context, req *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
	return text(render.Help()), nil, nil
}

func (h *Handlers) Cleanup(ctx context.Context, req *mcp.CallToolRequest, args CleanupArgs) (*mcp.CallToolResult, any, error) {
	if args.Directory == "" {
		n, err := h.mgr.CleanupAll()
		return text(cleanupAllReport(n, err)), nil, nil
	}
	err := h.mgr.Cleanup(args.Directory)
	return text(cleanupReport(args.Directory, err)), nil, nil
}

func (h *Handlers) DirectoryInfo(ctx context.Context, req *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
	info, err := h.mgr.DirectoryInfo()
	return text(directoryInfoReport(info, err)), nil, nil
}

func text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s}},
	}
}
