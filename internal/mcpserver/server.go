// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes othala's tagging operations for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/derive"
	"github.com/starford/othala/internal/settings"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/tagger"
)

// Server wraps the MCP server with othala tools.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	tg       *tagger.Tagger
	settings *settings.Store
}

// New creates a new MCP server with all othala tools registered.
func New(store storage.Provider, tg *tagger.Tagger, st *settings.Store) *Server {
	s := &Server{store: store, tg: tg, settings: st}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("preview_tags",
		mcp.WithDescription("Show the folder-derived tags the active policy produces for a note path, without touching the note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative note path (e.g. work/projects/note.md)")),
	), s.previewTags)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("move_note",
		mcp.WithDescription("Relocate a note inside the vault. Folder-derived tags from the old "+
			"location are replaced with the new location's; hand-authored tags are preserved. "+
			"Read the othala://tagging-policy resource for the exact rules."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Current relative path of the note")),
		mcp.WithString("to", mcp.Required(), mcp.Description("New relative path (must end with .md)")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("retag_vault",
		mcp.WithDescription("Re-run folder tag application over every note in the vault. "+
			"Use after changing the tagging settings."),
	), s.retagVault)

	s.mcp.AddTool(mcp.NewTool("strip_vault",
		mcp.WithDescription("Remove the currently derived folder tags from every note in the vault."),
	), s.stripVault)

	s.mcp.AddTool(mcp.NewTool("get_tag_settings",
		mcp.WithDescription("Return the active tagging settings (folder_depth, tag_prefix, tag_suffix)."),
	), s.getTagSettings)

	s.mcp.AddTool(mcp.NewTool("set_tag_settings",
		mcp.WithDescription("Update and persist the tagging settings. Existing notes keep their old "+
			"tags until retag_vault runs."),
		mcp.WithString("folder_depth", mcp.Required(), mcp.Description("One of: single, split-pair, joined-pair, full")),
		mcp.WithString("tag_prefix", mcp.Description("String prepended to every derived tag")),
		mcp.WithString("tag_suffix", mcp.Description("String appended to every derived tag")),
	), s.setTagSettings)

	// Resource: tagging policy contract.
	s.mcp.AddResource(
		mcp.NewResource("othala://tagging-policy", "Tagging Policy",
			mcp.WithResourceDescription("How folder-derived tags are computed and maintained."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTaggingPolicyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) previewTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := s.tg.Preview(path)
	if len(tags) == 0 {
		return mcp.NewToolResultText("no derived tags (root-level note)"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.tg.MoveNote(from, to); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", from)), nil
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("target already exists: %s", to)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved: %s -> %s", from, to)), nil
}

func (s *Server) retagVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.tg.RetagAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) stripVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.tg.StripAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTagSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.settings.Current(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setTagSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	depth, err := req.RequireString("folder_depth")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	next := settings.Settings{FolderDepth: derive.Depth(depth)}
	if prefix, err := req.RequireString("tag_prefix"); err == nil {
		next.TagPrefix = prefix
	}
	if suffix, err := req.RequireString("tag_suffix"); err == nil {
		next.TagSuffix = suffix
	}
	if err := s.settings.Update(next); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.settings.Current(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readTaggingPolicyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "othala://tagging-policy",
			MIMEType: "text/markdown",
			Text:     TaggingPolicyContract,
		},
	}, nil
}
