/*
	(c) Copyright NetFoundry Inc. Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"github.com/grocyscan/grocy-scanner/kernel/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewMCPServerCommand())
}

func NewMCPServerCommand() *cobra.Command {
	mcpCmd := &MCPServerCommand{}

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start MCP server exposing the scanner operations to AI assistants",
		Long: `Start an MCP (Model Context Protocol) server on stdio that exposes the
grocy scanner operations to AI assistants.

The server provides tools for:
  - lookup_barcode: Look up the stock of a product by barcode
  - purchase_product: Add purchased units to stock
  - consume_product: Remove consumed units from stock
  - open_product: Mark units as opened
  - test_connection: Locate grocy and test the api key

And resources:
  - grocy-scanner://scans: Most recent outcome per scanned barcode`,
		RunE: mcpCmd.run,
	}

	cmd.Flags().BoolVar(&mcpCmd.UseMemoryStore, "memory", false, "use in-memory options store (for testing)")

	return cmd
}

type MCPServerCommand struct {
	UseMemoryStore bool
}

func (m *MCPServerCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout carries the protocol
	logrus.SetOutput(cmd.ErrOrStderr())

	rt, err := newRuntime(cfg, m.UseMemoryStore)
	if err != nil {
		return err
	}
	defer rt.Close()

	logrus.Info("starting MCP server on stdio...")
	server := mcp.NewScannerMCPServer(rt.scanner, rt.reconciler)
	return server.ServeStdio()
}
