package api

import (
	"context"
	"net/http"
	"testing"

	"biolink/internal/content"
	"biolink/internal/draft"
	"biolink/internal/editor"
	"biolink/internal/render"
)

// setupEditor creates a user with a default page and returns the test
// server and user id.
func setupEditor(t *testing.T) (*TestServer, string) {
	t.Helper()
	ts := NewTestServer(t)
	t.Cleanup(ts.Close)

	userID := ts.CreateTestUser(t, "alice", "alice@example.com", "password1")
	ts.CreateTestPage(t, userID)
	return ts, userID
}

// submitBlock drives the form flow and returns the resulting block.
func submitBlock(t *testing.T, ts *TestServer, userID string, req SubmitBlockRequest) content.Block {
	t.Helper()

	rec, httpReq := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks", req, userID, nil)
	ts.HandleSubmitBlock(rec, httpReq)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var b content.Block
	DecodeJSON(t, rec, &b)
	return b
}

// saveDraft persists the session's draft through the handler.
func saveDraft(t *testing.T, ts *TestServer, userID string) EditorStateResponse {
	t.Helper()

	rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/save", nil, userID, nil)
	ts.HandleSaveDraft(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var state EditorStateResponse
	DecodeJSON(t, rec, &state)
	return state
}

func TestHandleEditorState(t *testing.T) {
	t.Run("fresh session is clean", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "GET", "/api/editor", nil, userID, nil)
		ts.HandleEditorState(rec, req)

		AssertStatusCode(t, rec.Code, http.StatusOK)

		var state EditorStateResponse
		DecodeJSON(t, rec, &state)

		if state.PageID == "" {
			t.Error("Expected non-empty page ID")
		}
		if state.State != draft.StateClean {
			t.Errorf("State = %q, want %q", state.State, draft.StateClean)
		}
		if state.Dirty {
			t.Error("Fresh session should not be dirty")
		}
	})

	t.Run("user without a page gets 404", func(t *testing.T) {
		ts := NewTestServer(t)
		defer ts.Close()

		userID := ts.CreateTestUser(t, "bob", "bob@example.com", "password1")

		rec, req := ts.MakeAuthRequest(t, "GET", "/api/editor", nil, userID, nil)
		ts.HandleEditorState(rec, req)

		AssertError(t, rec, http.StatusNotFound, "page not found", "not_found")
	})
}

func TestHandleSubmitBlock(t *testing.T) {
	t.Run("creates a link block and marks the draft dirty", func(t *testing.T) {
		ts, userID := setupEditor(t)

		b := submitBlock(t, ts, userID, SubmitBlockRequest{
			Type:  content.TypeLink,
			Input: editor.FormInput{Title: "My Site", URL: "https://example.com"},
		})

		if b.ID == "" {
			t.Error("Expected assigned block ID")
		}
		if b.Type != content.TypeLink {
			t.Errorf("Type = %q, want %q", b.Type, content.TypeLink)
		}
		if b.Icon == "" {
			t.Error("Expected default icon on new block")
		}
		if !b.Visible {
			t.Error("New block should be visible")
		}

		rec, req := ts.MakeAuthRequest(t, "GET", "/api/editor", nil, userID, nil)
		ts.HandleEditorState(rec, req)
		var state EditorStateResponse
		DecodeJSON(t, rec, &state)
		if !state.Dirty {
			t.Error("Draft should be dirty after a block is added")
		}
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks", SubmitBlockRequest{
			Type:  content.TypeLink,
			Input: editor.FormInput{Title: "No URL"},
		}, userID, nil)
		ts.HandleSubmitBlock(rec, req)

		AssertError(t, rec, http.StatusBadRequest, "url", "validation_error")

		// Rejected submission keeps the form open for correction
		rec, req = ts.MakeAuthRequest(t, "GET", "/api/editor", nil, userID, nil)
		ts.HandleEditorState(rec, req)
		var state EditorStateResponse
		DecodeJSON(t, rec, &state)
		if !state.UI.FormOpen {
			t.Error("Form should stay open after a rejected submission")
		}
		if state.Dirty {
			t.Error("Rejected submission must not dirty the draft")
		}
	})

	t.Run("rejects unknown block type", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks", SubmitBlockRequest{
			Type:  content.Type("VIDEO"),
			Input: editor.FormInput{Title: "clip"},
		}, userID, nil)
		ts.HandleSubmitBlock(rec, req)

		AssertError(t, rec, http.StatusBadRequest, "unknown block type", "unknown_type")
	})

	t.Run("edits an existing block in place", func(t *testing.T) {
		ts, userID := setupEditor(t)

		b := submitBlock(t, ts, userID, SubmitBlockRequest{
			Type:  content.TypeLink,
			Input: editor.FormInput{Title: "Old", URL: "https://example.com"},
		})

		edited := submitBlock(t, ts, userID, SubmitBlockRequest{
			BlockID: b.ID,
			Type:    content.TypeLink,
			Input:   editor.FormInput{Title: "New", URL: "https://example.com/new"},
		})

		if edited.ID != b.ID {
			t.Errorf("Edited block ID = %q, want %q", edited.ID, b.ID)
		}
		if edited.Title != "New" {
			t.Errorf("Title = %q, want %q", edited.Title, "New")
		}
	})

	t.Run("editing an unknown block returns 404", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks", SubmitBlockRequest{
			BlockID: "missing",
			Type:    content.TypeLink,
			Input:   editor.FormInput{Title: "x", URL: "https://example.com"},
		}, userID, nil)
		ts.HandleSubmitBlock(rec, req)

		AssertError(t, rec, http.StatusNotFound, "", "not_found")
	})
}

func TestHandleSaveDraft(t *testing.T) {
	t.Run("persists blocks and returns to clean", func(t *testing.T) {
		ts, userID := setupEditor(t)

		first := submitBlock(t, ts, userID, SubmitBlockRequest{
			Type:  content.TypeLink,
			Input: editor.FormInput{Title: "First", URL: "https://example.com/1"},
		})
		second := submitBlock(t, ts, userID, SubmitBlockRequest{
			Type:  content.TypeLink,
			Input: editor.FormInput{Title: "Second", URL: "https://example.com/2"},
		})

		state := saveDraft(t, ts, userID)
		if state.State != draft.StateClean {
			t.Errorf("State after save = %q, want %q", state.State, draft.StateClean)
		}

		blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
		if err != nil {
			t.Fatalf("Failed to list blocks: %v", err)
		}
		if len(blocks) != 2 {
			t.Fatalf("Persisted %d blocks, want 2", len(blocks))
		}
		if blocks[0].ID != first.ID || blocks[1].ID != second.ID {
			t.Errorf("Persisted order = [%s %s], want [%s %s]",
				blocks[0].ID, blocks[1].ID, first.ID, second.ID)
		}
	})

	t.Run("saving a clean draft is a no-op", func(t *testing.T) {
		ts, userID := setupEditor(t)

		state := saveDraft(t, ts, userID)
		if state.State != draft.StateClean {
			t.Errorf("State = %q, want %q", state.State, draft.StateClean)
		}
	})
}

func TestHandleMoveBlock(t *testing.T) {
	ts, userID := setupEditor(t)

	first := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "First", URL: "https://example.com/1"},
	})
	second := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Second", URL: "https://example.com/2"},
	})

	rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks/"+second.ID+"/move",
		MoveBlockRequest{Target: 0}, userID, map[string]string{"blockId": second.ID})
	ts.HandleMoveBlock(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	state := saveDraft(t, ts, userID)

	blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Persisted %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID != second.ID || blocks[1].ID != first.ID {
		t.Errorf("Order after move = [%s %s], want [%s %s]",
			blocks[0].ID, blocks[1].ID, second.ID, first.ID)
	}
}

func TestHandleToggleBlock(t *testing.T) {
	ts, userID := setupEditor(t)

	b := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Link", URL: "https://example.com"},
	})

	rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks/"+b.ID+"/toggle",
		nil, userID, map[string]string{"blockId": b.ID})
	ts.HandleToggleBlock(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	state := saveDraft(t, ts, userID)

	blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Persisted %d blocks, want 1", len(blocks))
	}
	if blocks[0].Visible {
		t.Error("Block should be hidden after toggle")
	}
}

func TestHandleDeleteBlock(t *testing.T) {
	ts, userID := setupEditor(t)

	b := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Link", URL: "https://example.com"},
	})

	rec, req := ts.MakeAuthRequest(t, "DELETE", "/api/editor/blocks/"+b.ID,
		nil, userID, map[string]string{"blockId": b.ID})
	ts.HandleDeleteBlock(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	state := saveDraft(t, ts, userID)

	blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("Persisted %d blocks, want 0", len(blocks))
	}
}

func TestHandleAssignBlock(t *testing.T) {
	ts, userID := setupEditor(t)

	category := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeCategory,
		Input: editor.FormInput{Title: "Shop"},
	})
	link := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Item", URL: "https://example.com"},
	})

	rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks/"+link.ID+"/parent",
		AssignBlockRequest{ParentID: category.ID}, userID, map[string]string{"blockId": link.ID})
	ts.HandleAssignBlock(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	state := saveDraft(t, ts, userID)

	blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	for _, b := range blocks {
		if b.ID == link.ID && b.ParentID != category.ID {
			t.Errorf("ParentID = %q, want %q", b.ParentID, category.ID)
		}
	}
}

func TestHandleUpdateEditorPage(t *testing.T) {
	t.Run("updates page settings", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "PUT", "/api/editor/page", PageRequest{
			DisplayName:     "Alice",
			Bio:             "Hi there",
			Alignment:       content.AlignLeft,
			BrandColor:      "#FF0000",
			BackgroundColor: "#FFFFFF",
			Theme:           "MODERN",
			Language:        "en",
			Live:            true,
		}, userID, nil)
		ts.HandleUpdateEditorPage(rec, req)
		AssertStatusCode(t, rec.Code, http.StatusOK)

		state := saveDraft(t, ts, userID)

		page, err := ts.Store.Pages.ByID(context.Background(), state.PageID)
		if err != nil {
			t.Fatalf("Failed to load page: %v", err)
		}
		if page.DisplayName != "Alice" {
			t.Errorf("DisplayName = %q, want %q", page.DisplayName, "Alice")
		}
		if page.Theme != "MODERN" {
			t.Errorf("Theme = %q, want %q", page.Theme, "MODERN")
		}
		if page.Alignment != content.AlignLeft {
			t.Errorf("Alignment = %q, want %q", page.Alignment, content.AlignLeft)
		}
	})

	t.Run("rejects unknown theme", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "PUT", "/api/editor/page", PageRequest{
			Alignment:       content.AlignCenter,
			BrandColor:      "#000000",
			BackgroundColor: "#FFFFFF",
			Theme:           "NEON",
			Language:        "en",
		}, userID, nil)
		ts.HandleUpdateEditorPage(rec, req)

		AssertError(t, rec, http.StatusBadRequest, "unknown theme", "validation_error")
	})

	t.Run("rejects invalid alignment", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "PUT", "/api/editor/page", PageRequest{
			Alignment:       content.Alignment("justified"),
			BrandColor:      "#000000",
			BackgroundColor: "#FFFFFF",
			Theme:           "DEFAULT",
			Language:        "en",
		}, userID, nil)
		ts.HandleUpdateEditorPage(rec, req)

		AssertError(t, rec, http.StatusBadRequest, "alignment", "validation_error")
	})
}

func TestHandleSetSocialLinks(t *testing.T) {
	t.Run("replaces the social link set", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "PUT", "/api/editor/social-links", SocialLinksRequest{
			Links: []content.SocialLink{
				{Platform: content.PlatformGithub, URL: "https://github.com/alice"},
				{Platform: content.PlatformTwitter, URL: "https://twitter.com/alice"},
			},
		}, userID, nil)
		ts.HandleSetSocialLinks(rec, req)
		AssertStatusCode(t, rec.Code, http.StatusOK)

		state := saveDraft(t, ts, userID)

		links, err := ts.Store.Socials.ListByPage(context.Background(), state.PageID)
		if err != nil {
			t.Fatalf("Failed to list social links: %v", err)
		}
		if len(links) != 2 {
			t.Fatalf("Persisted %d links, want 2", len(links))
		}
		if links[0].Platform != content.PlatformGithub {
			t.Errorf("links[0].Platform = %q, want %q", links[0].Platform, content.PlatformGithub)
		}
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		ts, userID := setupEditor(t)

		rec, req := ts.MakeAuthRequest(t, "PUT", "/api/editor/social-links", SocialLinksRequest{
			Links: []content.SocialLink{
				{Platform: content.Platform("myspace"), URL: "https://myspace.com/alice"},
			},
		}, userID, nil)
		ts.HandleSetSocialLinks(rec, req)

		AssertError(t, rec, http.StatusBadRequest, "platform", "validation_error")
	})
}

func TestHandleEditorPreview(t *testing.T) {
	ts, userID := setupEditor(t)

	b := submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Link", URL: "https://example.com"},
	})

	rec, req := ts.MakeAuthRequest(t, "POST", "/api/editor/blocks/"+b.ID+"/toggle",
		nil, userID, map[string]string{"blockId": b.ID})
	ts.HandleToggleBlock(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	// Edit preview still shows the hidden block
	rec, req = ts.MakeAuthRequest(t, "GET", "/api/editor/preview", nil, userID, nil)
	ts.HandleEditorPreview(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var doc render.Document
	DecodeJSON(t, rec, &doc)
	if len(doc.Nodes) != 1 {
		t.Fatalf("Edit preview has %d nodes, want 1", len(doc.Nodes))
	}
	if !doc.Nodes[0].Hidden {
		t.Error("Hidden block should be flagged in edit preview")
	}

	// Public preview drops it entirely
	rec, req = ts.MakeAuthRequest(t, "GET", "/api/editor/preview/public", nil, userID, nil)
	ts.HandleEditorPublicPreview(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var pub render.Document
	DecodeJSON(t, rec, &pub)
	if len(pub.Nodes) != 0 {
		t.Errorf("Public preview has %d nodes, want 0", len(pub.Nodes))
	}
}

func TestHandleEndEditorSession(t *testing.T) {
	ts, userID := setupEditor(t)

	submitBlock(t, ts, userID, SubmitBlockRequest{
		Type:  content.TypeLink,
		Input: editor.FormInput{Title: "Link", URL: "https://example.com"},
	})

	rec, req := ts.MakeAuthRequest(t, "DELETE", "/api/editor/session", nil, userID, nil)
	ts.HandleEndEditorSession(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusNoContent)

	// A fresh session reloads persisted state, dropping the unsaved edit
	rec, req = ts.MakeAuthRequest(t, "GET", "/api/editor", nil, userID, nil)
	ts.HandleEditorState(rec, req)
	AssertStatusCode(t, rec.Code, http.StatusOK)

	var state EditorStateResponse
	DecodeJSON(t, rec, &state)
	if state.Dirty {
		t.Error("Fresh session after discard should be clean")
	}

	blocks, err := ts.Store.Blocks.ListByPage(context.Background(), state.PageID)
	if err != nil {
		t.Fatalf("Failed to list blocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("Discarded draft leaked %d blocks to the store", len(blocks))
	}
}
