package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/harvest/models"
)

func handleListDatasets(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := c.files(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatFiles(resp)), nil
	}
}

func handlePreviewDataset(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		rows := int(request.GetFloat("rows", 0))

		resp, err := c.preview(ctx, name, rows)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatPreview(resp)), nil
	}
}

func handleDatasetSeries(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		x, err := request.RequireString("x")
		if err != nil {
			return mcp.NewToolResultError("x is required"), nil
		}
		y, err := request.RequireString("y")
		if err != nil {
			return mcp.NewToolResultError("y is required"), nil
		}
		limit := int(request.GetFloat("limit", 0))

		resp, err := c.series(ctx, name, x, y, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatSeries(resp)), nil
	}
}

func formatFiles(resp *models.FilesResponse) string {
	if len(resp.Files) == 0 {
		return fmt.Sprintf("No CSV files in %s.", resp.Dir)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d CSV files in %s:\n", len(resp.Files), resp.Dir)
	for _, f := range resp.Files {
		fmt.Fprintf(&sb, "- %s (%d bytes, modified %s)\n",
			f.Name, f.Size, time.Unix(f.Modified, 0).UTC().Format(time.RFC3339))
	}
	return sb.String()
}

func formatPreview(resp *models.PreviewResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d columns, showing %d rows\n\n", resp.Name, len(resp.Columns), len(resp.Rows))
	sb.WriteString(strings.Join(resp.Columns, " | "))
	sb.WriteByte('\n')
	for _, row := range resp.Rows {
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatSeries(resp *models.SeriesResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s vs %s, %d points\n", resp.Name, resp.YColumn, resp.XColumn, len(resp.X))
	for i, x := range resp.X {
		y := "null"
		if i < len(resp.Y) && resp.Y[i] != nil {
			y = strconv.FormatFloat(*resp.Y[i], 'f', -1, 64)
		}
		fmt.Fprintf(&sb, "%s\t%s\n", x, y)
	}
	return sb.String()
}
