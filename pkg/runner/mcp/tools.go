package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListRootsTool(srv, svc)
	registerExpandItemTool(srv, svc)
	registerGetItemTool(srv, svc)
	registerRenameItemTool(srv, svc)
	registerDeleteItemTool(srv, svc)
	registerMoveItemTool(srv, svc)
	registerPinnedSuggestionTool(srv, svc)
}

func registerListRootsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_roots",
		mcp.WithDescription("List the top level containers with every expanded descendant."),
		mcp.WithBoolean("reload",
			mcp.Description("Discard the loaded tree and fetch the roots again."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if request.GetBool("reload", false) {
			svc.Reset()
		}
		roots, err := svc.ListRoots(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"count": len(roots),
			"roots": roots,
		})
	})
}

func registerExpandItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"expand_item",
		mcp.WithDescription("Load the direct contents of an item that is already in the tree. Ancestors of the item are never listed as its contents."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the item to expand."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.ExpandItem(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerGetItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_item",
		mcp.WithDescription("Fetch a single item by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the item."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.GetItem(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerRenameItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"rename_item",
		mcp.WithDescription("Change the name of an item."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the item to rename."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New name. Surrounding whitespace is trimmed and a blank name is rejected."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if strings.TrimSpace(args.ID) == "" {
			return mcp.NewToolResultError("id is required"), nil
		}
		dto, err := svc.RenameItem(ctx, args.ID, args.Name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_item",
		mcp.WithDescription("Soft delete an item. The item stays in the tree marked as deleted."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the item to delete."),
		),
		mcp.WithBoolean("restore",
			mcp.Description("Clear the deleted flag instead of setting it."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.DeleteItem(ctx, id, request.GetBool("restore", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerMoveItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"move_item",
		mcp.WithDescription("Move an item into another container. The tree is reloaded from the roots afterwards."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the item to move."),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("Identifier of the new container, or \"pinned\" for the pinned item."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID          string `json:"id"`
			Destination string `json:"destination"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		roots, err := svc.MoveItem(ctx, args.ID, args.Destination)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"moved":       args.ID,
			"destination": strings.TrimSpace(args.Destination),
			"roots":       roots,
		})
	})
}

func registerPinnedSuggestionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"pinned_suggestion",
		mcp.WithDescription("Return the pinned item that moves default to, if any."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.PinnedSuggestion(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"found": dto != nil,
			"item":  dto,
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
