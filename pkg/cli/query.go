package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentmatrix-dev/agentmatrix/internal/query"
	"github.com/agentmatrix-dev/agentmatrix/internal/registry"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

var (
	queryText       string
	queryTags       []string
	queryPricing    []string
	queryVerified   bool
	queryType       string
	queryGovernance string
	queryVisibility string
	querySort       string
	queryOrder      string
	queryGroup      string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter, sort and group the stored registry",
	Example: `  agentmatrix query --q rag
  agentmatrix query --governance pending --group type
  agentmatrix query --sort usageStats.invocations --order desc --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		view := query.Run(snap, query.Params{
			Filter:  queryFilter(),
			SortKey: querySort,
			Order:   query.ParseOrder(queryOrder),
			GroupBy: queryGroup,
		})
		if queryJSON {
			return printJSON(cmd.OutOrStdout(), view)
		}
		renderView(cmd.OutOrStdout(), view)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show registry totals, usage and leaderboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		stats := query.Aggregate(snap.Agents, snap.MCPServers)
		if queryJSON {
			return printJSON(cmd.OutOrStdout(), stats)
		}
		renderStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryText, "q", "q", "", "Free-text search over name, description and tags")
	f.StringSliceVar(&queryTags, "tag", nil, "Require tag (repeatable)")
	f.StringSliceVar(&queryPricing, "pricing", nil, "Accept pricing model (repeatable)")
	f.BoolVar(&queryVerified, "verified", false, "Only verified items")
	f.StringVar(&queryType, "type", "", "Exact item type")
	f.StringVar(&queryGovernance, "governance", "", "Governance status: approved, pending or rejected")
	f.StringVar(&queryVisibility, "visibility", "", "Visibility: public or private")
	f.StringVar(&querySort, "sort", "", "Sort key, dotted paths allowed")
	f.StringVar(&queryOrder, "order", "asc", "Sort order: asc or desc")
	f.StringVar(&queryGroup, "group", "", "Group key, e.g. type or pricingModel")
	f.BoolVar(&queryJSON, "json", false, "Print JSON instead of tables")

	statsCmd.Flags().BoolVar(&queryJSON, "json", false, "Print JSON instead of tables")
}

func queryFilter() query.Filter {
	return query.Filter{
		Query:        queryText,
		Tags:         queryTags,
		Pricing:      queryPricing,
		VerifiedOnly: queryVerified,
		Type:         queryType,
		Governance:   queryGovernance,
		Visibility:   queryVisibility,
	}
}

func loadSnapshot(cmd *cobra.Command) (models.Snapshot, error) {
	sink, err := registry.OpenSink(cmd.Context(), cfg, logger)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close store")
		}
	}()
	snap := sink.Load(cmd.Context())
	logger.Debug().
		Int("agents", len(snap.Agents)).
		Int("mcpServers", len(snap.MCPServers)).
		Str("store", cfg.Store).
		Msg("loaded registry")
	return snap, nil
}
