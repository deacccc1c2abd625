package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/storage"
	"github.com/haneul/studydesk/internal/store"
	"github.com/haneul/studydesk/internal/testutil"
)

func testServer(t *testing.T) (*Server, *store.DB, storage.Provider) {
	t.Helper()
	db := testutil.TestDB(t)
	_, files := testutil.TestFiles(t)
	return New(db, files, "u1"), db, files
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "list_links":
		result, err = srv.listLinks(ctx, req)
	case "get_note_categories":
		result, err = srv.getNoteCategories(ctx, req)
	case "read_note_file":
		result, err = srv.readNoteFile(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListNotesTool(t *testing.T) {
	srv, db, _ := testServer(t)
	ctx := context.Background()

	id, _ := db.InsertNote(ctx, models.Note{UserID: "u1", Title: "Graph theory"})
	_ = db.ReplaceNoteCategories(ctx, id, []string{"c1"})
	_, _ = db.InsertNote(ctx, models.Note{UserID: "u2", Title: "Not mine"})

	text := resultText(callTool(t, srv, "list_notes", nil))
	if !strings.Contains(text, "Graph theory") {
		t.Errorf("missing own note: %q", text)
	}
	if strings.Contains(text, "Not mine") {
		t.Errorf("foreign note leaked: %q", text)
	}
	if !strings.Contains(text, "c1") {
		t.Errorf("category ids missing: %q", text)
	}
}

func TestListCategoriesTool(t *testing.T) {
	srv, db, _ := testServer(t)
	ctx := context.Background()

	cat, _ := db.InsertCategory(ctx, "u1", "Math", 0)
	_, _ = db.InsertNote(ctx, models.Note{UserID: "u1", Title: "a", CategoryID: cat})
	_, _ = db.InsertNote(ctx, models.Note{UserID: "u1", Title: "b", IsFavorite: true})

	text := resultText(callTool(t, srv, "list_categories", nil))
	if !strings.Contains(text, "Math") {
		t.Errorf("category missing: %q", text)
	}
	if !strings.Contains(text, `"uncategorized": 1`) {
		t.Errorf("uncategorized count missing: %q", text)
	}
	if !strings.Contains(text, `"favorites": 1`) {
		t.Errorf("favorites count missing: %q", text)
	}
}

func TestListLinksTool(t *testing.T) {
	srv, db, _ := testServer(t)
	ctx := context.Background()

	g, _ := db.InsertLinkGroup(ctx, "u1", "Lectures", 0)
	_, _ = db.InsertStudyLink(ctx, models.StudyLink{UserID: "u1", Title: "intro", URL: "https://x.test", GroupID: g})

	text := resultText(callTool(t, srv, "list_links", nil))
	if !strings.Contains(text, "Lectures") || !strings.Contains(text, "intro") {
		t.Errorf("tree missing content: %q", text)
	}
}

func TestGetNoteCategoriesTool(t *testing.T) {
	srv, db, _ := testServer(t)
	ctx := context.Background()

	id, _ := db.InsertNote(ctx, models.Note{UserID: "u1", Title: "a", CategoryID: "legacy"})

	r := callTool(t, srv, "get_note_categories", map[string]interface{}{"note_id": id})
	if !strings.Contains(resultText(r), "legacy") {
		t.Errorf("legacy fallback missing: %q", resultText(r))
	}

	// Someone else's note reads as missing.
	other, _ := db.InsertNote(ctx, models.Note{UserID: "u2", Title: "theirs"})
	r = callTool(t, srv, "get_note_categories", map[string]interface{}{"note_id": other})
	if !r.IsError {
		t.Error("expected error for foreign note")
	}
}

func TestReadNoteFileTool(t *testing.T) {
	srv, db, files := testServer(t)
	ctx := context.Background()

	_ = files.Write("u1/a.md", []byte("hello"))
	id, _ := db.InsertNote(ctx, models.Note{UserID: "u1", Title: "a", FilePath: "u1/a.md"})

	r := callTool(t, srv, "read_note_file", map[string]interface{}{"note_id": id})
	if resultText(r) != "hello" {
		t.Errorf("content = %q", resultText(r))
	}

	bare, _ := db.InsertNote(ctx, models.Note{UserID: "u1", Title: "bare"})
	r = callTool(t, srv, "read_note_file", map[string]interface{}{"note_id": bare})
	if !r.IsError {
		t.Error("expected error for note without file")
	}
}
