// Package mcptools exposes the record store and helpers as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/denizg/dosya/internal/dates"
	"github.com/denizg/dosya/internal/store"
	"github.com/denizg/dosya/internal/strutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Records is the read side of the record store.
type Records interface {
	List() []string
	Get(id string) (string, bool)
}

// Writer applies record mutations.
type Writer interface {
	Create(value string) (string, error)
	Update(id, value string) (store.UpdateResult, error)
	Delete(id string) error
}

type ListRecordsArgs struct{}

type GetRecordArgs struct {
	ID string `json:"id" jsonschema:"the record ID returned by create_record"`
}

type CreateRecordArgs struct {
	Value string `json:"value" jsonschema:"the text to store; it is kept verbatim"`
}

type UpdateRecordArgs struct {
	ID    string `json:"id" jsonschema:"the ID of the record to update"`
	Value string `json:"value" jsonschema:"the replacement text"`
}

type DeleteRecordArgs struct {
	ID string `json:"id" jsonschema:"the ID of the record to delete; deleting a missing record is not an error"`
}

type ReverseTextArgs struct {
	Text string `json:"text" jsonschema:"the text to reverse"`
}

type DaysBetweenArgs struct {
	First   string `json:"first" jsonschema:"the start date, e.g. 01/01/2024"`
	Second  string `json:"second" jsonschema:"the end date, e.g. 15/01/2024"`
	Pattern string `json:"pattern,omitempty" jsonschema:"date pattern built from dd, d, MM, M and yyyy (default dd/MM/yyyy)"`
}

// New builds an MCP server with every tool registered.
func New(records Records, writer Writer, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dosya",
		Version: version,
	}, nil)
	RegisterRecordTools(server, records, writer)
	RegisterHelperTools(server)
	return server
}

// Handler serves server over MCP streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}

// RegisterRecordTools registers list_records, get_record, create_record,
// update_record and delete_record on the given MCP server.
func RegisterRecordTools(server *mcp.Server, records Records, writer Writer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_records",
		Description: "List the values of every stored record as a JSON array. Order is unspecified.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListRecordsArgs) (*mcp.CallToolResult, any, error) {
		values := records.List()
		if values == nil {
			values = []string{}
		}
		data, err := json.Marshal(values)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling records: %w", err)
		}
		return textResult(string(data)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_record",
		Description: `Get the value of a record by ID. Returns "Not found" when no such record exists.`,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetRecordArgs) (*mcp.CallToolResult, any, error) {
		value, ok := records.Get(args.ID)
		if !ok {
			return textResult("Not found"), nil, nil
		}
		return textResult(value), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_record",
		Description: "Store a text value under a newly generated ID and return the ID.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CreateRecordArgs) (*mcp.CallToolResult, any, error) {
		id, err := writer.Create(args.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("creating record: %w", err)
		}
		return textResult("Created with ID: " + id), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_record",
		Description: `Replace the value of an existing record. Returns "Not found" and changes nothing when the ID does not exist.`,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args UpdateRecordArgs) (*mcp.CallToolResult, any, error) {
		result, err := writer.Update(args.ID, args.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("updating record: %w", err)
		}
		if result != store.Updated {
			return textResult("Not found"), nil, nil
		}
		return textResult("Updated successfully"), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete a record by ID.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DeleteRecordArgs) (*mcp.CallToolResult, any, error) {
		if err := writer.Delete(args.ID); err != nil {
			return nil, nil, fmt.Errorf("deleting record: %w", err)
		}
		return textResult("Deleted"), nil, nil
	})
}

// RegisterHelperTools registers reverse_text and days_between.
func RegisterHelperTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "reverse_text",
		Description: "Reverse a string character by character.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ReverseTextArgs) (*mcp.CallToolResult, any, error) {
		return textResult(strutil.Reverse(args.Text)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "days_between",
		Description: "Count the days from the first date to the second. Negative when the second date is earlier.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DaysBetweenArgs) (*mcp.CallToolResult, any, error) {
		pattern := args.Pattern
		if pattern == "" {
			pattern = dates.DefaultPattern
		}
		days, err := dates.DaysBetweenPattern(args.First, args.Second, pattern)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(fmt.Sprint(days)), nil, nil
	})
}
