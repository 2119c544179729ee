package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grocyscan/grocy-scanner/kernel/engine"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const ScansURI = "grocy-scanner://scans"

type ScannerMCPServer struct {
	server     *server.MCPServer
	scanner    *engine.Scanner
	reconciler *engine.Reconciler
}

func NewScannerMCPServer(scanner *engine.Scanner, reconciler *engine.Reconciler) *ScannerMCPServer {
	srv := server.NewMCPServer(
		"Grocy Scanner",
		"v1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	ss := &ScannerMCPServer{
		server:     srv,
		scanner:    scanner,
		reconciler: reconciler,
	}

	ss.registerTools()
	ss.registerResources()

	return ss
}

func (ss *ScannerMCPServer) ServeStdio() error {
	return server.ServeStdio(ss.server)
}

func (ss *ScannerMCPServer) registerTools() {
	ss.server.AddTool(mcp.NewTool("lookup_barcode",
		mcp.WithDescription("Look up the Grocy stock of the product carrying a barcode"),
		mcp.WithString("barcode",
			mcp.Description("Scanned barcode"),
			mcp.Required(),
		),
	), ss.lookupHandler)

	for _, name := range model.StockActionNames() {
		action, err := model.GetStockAction(name)
		if err != nil {
			continue
		}
		quantityOpts := []mcp.PropertyOption{mcp.Description("Number of units")}
		if action.DefaultAmount() <= 0 {
			quantityOpts = append(quantityOpts, mcp.Required())
		}
		ss.server.AddTool(mcp.NewTool(name+"_product",
			mcp.WithDescription(action.Description()),
			mcp.WithString("barcode",
				mcp.Description("Scanned barcode"),
				mcp.Required(),
			),
			mcp.WithNumber("quantity", quantityOpts...),
		), ss.stockHandler(name))
	}

	ss.server.AddTool(mcp.NewTool("test_connection",
		mcp.WithDescription("Locate Grocy through the supervisor and test the api key, saving the resolved url on success"),
		mcp.WithString("api_key",
			mcp.Description("Grocy api key; the stored key is used when omitted"),
		),
	), ss.testConnectionHandler)
}

func (ss *ScannerMCPServer) registerResources() {
	resource := mcp.NewResource(ScansURI, "Recent scans",
		mcp.WithResourceDescription("Most recent outcome per scanned barcode"),
		mcp.WithMIMEType("application/json"),
	)
	ss.server.AddResource(resource, ss.scansHandler)
}

func (ss *ScannerMCPServer) lookupHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	barcode, err := request.RequireString("barcode")
	if err != nil {
		return mcp.NewToolResultError("barcode argument is required"), nil
	}
	result, err := ss.scanner.Lookup(ctx, barcode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultToTool(result)
}

func (ss *ScannerMCPServer) stockHandler(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		barcode, err := request.RequireString("barcode")
		if err != nil {
			return mcp.NewToolResultError("barcode argument is required"), nil
		}
		var quantity *float64
		if _, ok := request.GetArguments()["quantity"]; ok {
			q, err := request.RequireFloat("quantity")
			if err != nil {
				return mcp.NewToolResultError("quantity must be a number"), nil
			}
			quantity = &q
		}
		result, err := ss.scanner.Apply(ctx, action, barcode, quantity)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultToTool(result)
	}
}

func (ss *ScannerMCPServer) testConnectionHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apiKey := request.GetString("api_key", "")
	reconciled, err := ss.reconciler.Reconcile(ctx, apiKey)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !reconciled.Result.OK() {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", reconciled.Result.Outcome, reconciled.Result.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Connected to Grocy at %s", reconciled.BaseURL)), nil
}

func (ss *ScannerMCPServer) scansHandler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	scans := ss.scanner.RecentScans()
	if scans == nil {
		scans = []model.ScanRecord{}
	}
	data, err := json.Marshal(map[string]any{"count": len(scans), "scans": scans})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scans: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ScansURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// resultToTool renders a gateway result; every outcome other than found is a tool error.
func resultToTool(result model.Result) (*mcp.CallToolResult, error) {
	switch result.Outcome {
	case model.Found:
		var body any = map[string]any{"status": "success"}
		if result.Product != nil {
			body = result.Product
		} else if len(result.Payload) > 0 && json.Valid(result.Payload) {
			body = result.Payload
		}
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	case model.NotFound, model.Unauthorized, model.TransportError:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", result.Outcome, result.Message)), nil
	case model.UpstreamError:
		return mcp.NewToolResultError(fmt.Sprintf("%s: grocy answered status %d: %s", result.Outcome, result.Status, result.Message)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("unexpected outcome %s", result.Outcome)), nil
}
