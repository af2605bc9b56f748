package devtools

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/odilia-app/odilia-core/internal/cache"
	"github.com/odilia-app/odilia-core/internal/key"
)

// NewMCPServer builds an MCP server exposing the running core's cache
// for live introspection, wiring github.com/modelcontextprotocol/go-sdk
// the way the DOMAIN STACK calls for an AI-facing introspection surface
// (the pack's own brennhill-gasoline-mcp-ai-devtools hand-rolls its own
// JSON-RPC framing instead of using this library; here we use the real
// SDK, since nothing about the cache's query shape needs custom framing).
func NewMCPServer(c *cache.Cache) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "odilia-cache",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_cache_items",
		Description: "List every item currently mirrored in the accessibility-tree cache.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listCacheInput) (*mcp.CallToolResult, listCacheOutput, error) {
		return nil, listCacheOutput{Items: c.All()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cache_item",
		Description: "Look up a single cached item by its bus name and object path.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getCacheItemInput) (*mcp.CallToolResult, getCacheItemOutput, error) {
		k := key.New(in.BusName, in.Path)
		snap, ok := c.Get(k)
		if !ok {
			return nil, getCacheItemOutput{}, fmt.Errorf("devtools: no cached item for %s", k)
		}
		return nil, getCacheItemOutput{Item: snap}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_cache",
		Description: "Export the full cache in json, yaml, or msgpack, base64-encoded for binary-safe transport.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in exportCacheInput) (*mcp.CallToolResult, exportCacheOutput, error) {
		registry := NewFormatRegistry()
		format, err := registry.Get(in.Format)
		if err != nil {
			return nil, exportCacheOutput{}, err
		}
		data := SnapshotCache(c, time.Now())
		encoded, err := format.Marshal(data)
		if err != nil {
			return nil, exportCacheOutput{}, fmt.Errorf("devtools: export: %w", err)
		}
		return nil, exportCacheOutput{
			ContentType: format.ContentType(),
			DataBase64:  base64.StdEncoding.EncodeToString(encoded),
		}, nil
	})

	return server
}

type listCacheInput struct{}

type listCacheOutput struct {
	Items []cache.Snapshot `json:"items"`
}

type getCacheItemInput struct {
	BusName string `json:"bus_name" jsonschema:"the D-Bus well-known or unique name owning the object"`
	Path    string `json:"path" jsonschema:"the object path within that bus name"`
}

type getCacheItemOutput struct {
	Item cache.Snapshot `json:"item"`
}

type exportCacheInput struct {
	Format string `json:"format" jsonschema:"one of json, yaml, msgpack"`
}

type exportCacheOutput struct {
	ContentType string `json:"content_type"`
	DataBase64  string `json:"data_base64"`
}
