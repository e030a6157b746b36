package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerRootsResource(srv, svc)
	registerItemTemplate(srv, svc)
}

func registerRootsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"stow://roots",
		"Roots",
		mcp.WithResourceDescription("Top level containers and every expanded descendant."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		roots, err := svc.ListRoots(ctx)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"roots": roots,
			"count": len(roots),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerItemTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"stow://items/{id}",
		"Item Details",
		mcp.WithTemplateDescription("Detailed information about a single item."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments["id"])
		if id == "" {
			return nil, fmt.Errorf("item id is required")
		}
		dto, err := svc.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"item": dto})
	})
}

// templateArg accepts both plain strings and the single element slices some
// clients send for template variables.
func templateArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
