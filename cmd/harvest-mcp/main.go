// Command harvest-mcp exposes the harvest viewer API to MCP clients over
// stdio, so an assistant can browse and chart downloaded datasets.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/harvest/api/handler"
)

func main() {
	apiURL := os.Getenv("HARVEST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := newClient(apiURL, os.Getenv("HARVEST_API_KEY"))

	s := server.NewMCPServer(
		"harvest",
		handler.Version,
		server.WithToolCapabilities(false),
	)
	registerTools(s, c)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func registerTools(s *server.MCPServer, c *client) {
	listTool := mcp.NewTool("list_datasets",
		mcp.WithDescription("List the CSV files downloaded by harvest runs, with size and modification time."),
	)
	s.AddTool(listTool, handleListDatasets(c))

	previewTool := mcp.NewTool("preview_dataset",
		mcp.WithDescription("Show the header and first rows of a downloaded CSV file."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name as returned by list_datasets, e.g. 'Metro_zhvi_uc_sfrcondo.csv'"),
		),
		mcp.WithNumber("rows",
			mcp.Description("Number of data rows to return (default: 5)"),
		),
	)
	s.AddTool(previewTool, handlePreviewDataset(c))

	seriesTool := mcp.NewTool("dataset_series",
		mcp.WithDescription("Extract two columns of a CSV file as an x/y series for charting. Non-numeric y values come back as null."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name as returned by list_datasets"),
		),
		mcp.WithString("x",
			mcp.Required(),
			mcp.Description("Column used for the x axis, usually a label or date column"),
		),
		mcp.WithString("y",
			mcp.Required(),
			mcp.Description("Numeric column used for the y axis"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of points (default: all)"),
		),
	)
	s.AddTool(seriesTool, handleDatasetSeries(c))
}
