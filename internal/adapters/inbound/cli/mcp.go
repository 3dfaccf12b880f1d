package cli

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	mcpadapter "github.com/plcqa/plcqa/internal/adapters/inbound/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the plcqa MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *rootOptions) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start plcqa MCP server (stdio)",
		Long:  "Start the plcqa MCP server using stdio transport. Clients can analyze project trees, compare snapshots and read the rule table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return err
			}
			s := mcpadapter.NewPlcqaMCPServer(absPath, newAnalyzeService(opts.logger(cmd)))
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
