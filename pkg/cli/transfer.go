package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentmatrix-dev/agentmatrix/internal/registry"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/exporter"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry/importer"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

var exportFormat string

var importCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Replace the stored registry with a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		imp := importer.NewService()
		imp.SetTimeout(cfg.ImportTimeout)

		source := args[0]
		var (
			snap models.Snapshot
			err  error
		)
		if isURL(source) {
			snap, err = imp.ImportURL(ctx, source)
		} else {
			snap, err = imp.ImportFile(source)
		}
		if err != nil {
			return err
		}

		sink, err := registry.OpenSink(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.Save(ctx, snap); err != nil {
			return fmt.Errorf("save registry: %w", err)
		}

		logger.Info().
			Str("source", source).
			Int("agents", len(snap.Agents)).
			Int("mcpServers", len(snap.MCPServers)).
			Msg("registry imported")
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d agents and %d MCP servers into the %s store\n",
			len(snap.Agents), len(snap.MCPServers), cfg.Store)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the stored registry as JSON or YAML",
	Long:  "Write the stored registry to path, or to stdout when no path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exporter.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		svc := exporter.NewService(snapshotSource(snap))

		if len(args) == 0 {
			data, err := svc.Export(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		n, err := svc.ExportToPath(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", n, args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
}

type snapshotSource models.Snapshot

func (s snapshotSource) Snapshot() models.Snapshot { return models.Snapshot(s) }

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
