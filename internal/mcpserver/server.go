// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes StudyDesk tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/haneul/studydesk/internal/projection"
	"github.com/haneul/studydesk/internal/storage"
	"github.com/haneul/studydesk/internal/store"
)

// Server wraps the MCP server with StudyDesk tools. The stdio
// transport serves a single local user; every tool is scoped to the
// userID given at construction.
type Server struct {
	mcp    *server.MCPServer
	db     store.Store
	files  storage.Provider
	userID string
}

// New creates a new MCP server with all StudyDesk tools registered.
func New(db store.Store, files storage.Provider, userID string) *Server {
	s := &Server{db: db, files: files, userID: userID}

	s.mcp = server.NewMCPServer(
		"StudyDesk",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all study notes with their category assignments, newest first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List note categories in display order with per-category note counts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_links",
		mcp.WithDescription("List study links grouped into their group/subgroup tree."),
	), s.listLinks)

	s.mcp.AddTool(mcp.NewTool("get_note_categories",
		mcp.WithDescription("Return the effective category ids for one note."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Note id")),
	), s.getNoteCategories)

	s.mcp.AddTool(mcp.NewTool("read_note_file",
		mcp.WithDescription("Read the stored file content attached to a note."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Note id")),
	), s.readNoteFile)

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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.db.ListNotes(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.db.ListNoteCategories(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type noteOut struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		IsFavorite  bool     `json:"is_favorite"`
		CategoryIDs []string `json:"category_ids"`
	}
	out := make([]noteOut, len(notes))
	for i, n := range notes {
		ids := projection.EffectiveCategoryIDs(n, rows)
		if ids == nil {
			ids = []string{}
		}
		out[i] = noteOut{ID: n.ID, Title: n.Title, IsFavorite: n.IsFavorite, CategoryIDs: ids}
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.db.ListCategories(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.db.ListNotes(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.db.ListNoteCategories(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	counts := projection.NotesCountByCategory(notes, rows)

	type catOut struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Notes int    `json:"notes"`
	}
	out := make([]catOut, len(cats))
	for i, c := range cats {
		out[i] = catOut{ID: c.ID, Name: c.Name, Notes: counts[c.ID]}
	}
	data, _ := json.MarshalIndent(map[string]any{
		"categories":    out,
		"uncategorized": counts[projection.KeyNone],
		"favorites":     counts[projection.KeyFavorites],
	}, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links, err := s.db.ListStudyLinks(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groups, err := s.db.ListLinkGroups(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subgroups, err := s.db.ListLinkSubgroups(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree := projection.GroupLinks(links, groups, subgroups)
	data, _ := json.MarshalIndent(tree, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getNoteCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.db.GetNote(ctx, noteID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}
	if n.UserID != s.userID {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}
	rows, err := s.db.ListNoteCategories(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids := projection.EffectiveCategoryIDs(*n, rows)
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(map[string]any{"note_id": noteID, "category_ids": ids})
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readNoteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.db.GetNote(ctx, noteID)
	if err != nil || n.UserID != s.userID {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}
	if n.FilePath == "" {
		return mcp.NewToolResultError(fmt.Sprintf("note has no file: %s", noteID)), nil
	}
	data, err := s.files.Download(n.FilePath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
