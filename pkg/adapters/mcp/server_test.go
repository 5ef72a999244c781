package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/internal/testutils"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	compiled := testutils.CompileTable1(t)
	deck := testutils.Deck(t, map[string]any{
		"table1": map[string]any{"i": 7, "d": "x", "e": []any{1.0, 2.0, 3.0}},
	})
	b, err := irep.New(compiled.Index, deck)
	require.NoError(t, err)
	return NewServer(b)
}

func TestReadTable(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp, err := s.handleReadTable(ctx, mcp.CallToolRequest{}, PathArgs{Path: "table1"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Assigned)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "table1.d", resp.Errors[0].Path)
	assert.Equal(t, "type_mismatch", resp.Errors[0].Kind)
	assert.Equal(t, `"x"`, resp.Errors[0].Value)

	_, err = s.handleReadTable(ctx, mcp.CallToolRequest{}, PathArgs{})
	assert.Error(t, err)
}

func TestSnapshotTable(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	_, err := s.handleReadTable(ctx, mcp.CallToolRequest{}, PathArgs{Path: "table1"})
	require.NoError(t, err)

	resp, err := s.handleSnapshotTable(ctx, mcp.CallToolRequest{}, TableArgs{Table: "table1"})
	require.NoError(t, err)
	assert.Equal(t, "table1", resp.Table)
	assert.Equal(t, int64(7), resp.Data.(map[string]any)["i"])
	assert.Empty(t, resp.Report.Errors)

	_, err = s.handleSnapshotTable(ctx, mcp.CallToolRequest{}, TableArgs{Table: "table1.i"})
	assert.Error(t, err)
}

func TestExistsAndLength(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	got, err := s.handleExists(ctx, mcp.CallToolRequest{}, PathArgs{Path: "table1.e"})
	require.NoError(t, err)
	assert.Equal(t, true, got["exists"])

	got, err = s.handleRuntimeLength(ctx, mcp.CallToolRequest{}, PathArgs{Path: "table1.e"})
	require.NoError(t, err)
	assert.Equal(t, 3, got["length"])

	got, err = s.handleRuntimeLength(ctx, mcp.CallToolRequest{}, PathArgs{Path: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, -1, got["length"])
}

func TestResources(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "irep://tables"
	contents, err := s.handleListResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents).Text
	assert.JSONEq(t, `{"tables":["table1","table4"]}`, text)

	req.Params.URI = "irep://tables/table4"
	contents, err = s.handleTableResource(ctx, req)
	require.NoError(t, err)
	var snap SnapshotResponse
	require.NoError(t, json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &snap))
	assert.Equal(t, "table4", snap.Table)
	assert.Len(t, snap.Data.(map[string]any), 99)

	req.Params.URI = "irep://tables/"
	_, err = s.handleTableResource(ctx, req)
	assert.Error(t, err)
}
