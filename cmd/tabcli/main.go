package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tabcli/internal/app"
	"tabcli/internal/auth"
	"tabcli/internal/codec"
	"tabcli/internal/config"
	"tabcli/internal/meta"
)

var version = "dev"

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp creates the application for one command. The caller must defer
// a.Close(ctx).
func newApp(operation string) (*app.App, error) {
	a, err := app.NewApp(operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// filtersFromFlags builds the filter set shared by collect, export and
// explore commands.
func filtersFromFlags(cmd *cobra.Command) meta.Filters {
	projects, _ := cmd.Flags().GetStringSlice("projects")
	owners, _ := cmd.Flags().GetStringSlice("owners")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	return meta.Filters{Projects: projects, Owners: owners, Tags: tags}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("projects", nil, "Only include artifacts in these projects")
	cmd.Flags().StringSlice("owners", nil, "Only include artifacts owned by these users")
	cmd.Flags().StringSlice("tags", nil, "Only include artifacts carrying one of these tags")
}

func printRecords(records []meta.ArtifactRecord) {
	if len(records) == 0 {
		fmt.Println("No artifacts found.")
		return
	}
	for _, r := range records {
		tags := ""
		if len(r.Tags) > 0 {
			tags = "  [" + strings.Join(r.Tags, ",") + "]"
		}
		fmt.Printf("%-38s  %-12s  %-30s  %s%s\n", r.ID, r.Kind, r.Name, r.ProjectName, tags)
	}
	fmt.Printf("\n%d artifact(s)\n", len(records))
}

var rootCmd = &cobra.Command{
	Use:   "tabcli",
	Short: "Collect and export Tableau site metadata",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tabcli %s\n", version)
	},
}

// auth command

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage server authentication",
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively verify credentials and print the matching env vars",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthSetup")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, true); err != nil {
			return err
		}

		fmt.Println("\nSign-in succeeded. To skip the prompts next time, export:")
		fmt.Printf("  %s, %s and the credential variables for your method\n",
			auth.EnvServerURL, auth.EnvSiteID)
		return nil
	},
}

var authTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Sign in with the credentials from the environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthTest")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		fmt.Println("Sign-in succeeded.")
		return nil
	},
}

var authInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the connected server and site",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthInfo")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		info, err := a.ServerInfo(ctx)
		if err != nil {
			return err
		}

		site := info.Site
		if site == "" {
			site = "(default)"
		}
		fmt.Printf("Server:          %s\n", info.ServerURL)
		fmt.Printf("Site:            %s\n", site)
		fmt.Printf("Product version: %s\n", info.ProductVersion)
		fmt.Printf("REST API:        %s\n", info.APIVersion)
		return nil
	},
}

// explore command

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse site content",
}

// newExploreListCmd builds one listing subcommand per artifact kind.
func newExploreListCmd(use string, kind meta.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("List %s on the site", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			project, _ := cmd.Flags().GetString("project")
			owner, _ := cmd.Flags().GetString("owner")

			a, err := newApp("Explore")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer a.Close(ctx)

			if err := a.Connect(ctx, false); err != nil {
				return err
			}

			records, err := a.ListKind(ctx, kind)
			if err != nil {
				return err
			}

			var filters meta.Filters
			if project != "" {
				filters.Projects = []string{project}
			}
			if owner != "" {
				filters.Owners = []string{owner}
			}
			if !filters.IsZero() {
				kept := records[:0]
				for _, r := range records {
					if filters.Match(r) {
						kept = append(kept, r)
					}
				}
				records = kept
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			printRecords(records)
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of artifacts to show (0 = all)")
	cmd.Flags().String("project", "", "Only show artifacts in this project")
	cmd.Flags().String("owner", "", "Only show artifacts owned by this user")
	return cmd
}

var exploreWorkbookCmd = &cobra.Command{
	Use:   "workbook ID",
	Short: "Show one workbook with its views and connections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExploreWorkbook")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		record, err := a.WorkbookDetail(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Workbook: %s\n", record.Name)
		fmt.Printf("ID:       %s\n", record.ID)
		fmt.Printf("Project:  %s\n", record.ProjectName)
		fmt.Printf("Owner:    %s\n", record.OwnerName)
		if len(record.Tags) > 0 {
			fmt.Printf("Tags:     %s\n", strings.Join(record.Tags, ", "))
		}
		fmt.Printf("Updated:  %s\n", record.UpdatedAt)

		if views, ok := record.Extra["views"].([]any); ok && len(views) > 0 {
			fmt.Printf("\nViews (%d):\n", len(views))
			for _, v := range views {
				if m, ok := v.(map[string]any); ok {
					fmt.Printf("  %v\n", m["name"])
				}
			}
		}
		if conns, ok := record.Extra["connections"].([]any); ok && len(conns) > 0 {
			fmt.Printf("\nConnections (%d):\n", len(conns))
			for _, c := range conns {
				if m, ok := c.(map[string]any); ok {
					fmt.Printf("  %v (%v)\n", m["connection_type"], m["server_address"])
				}
			}
		}
		return nil
	},
}

var exploreSearchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Search artifacts of every kind by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExploreSearch")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		records, err := a.Search(ctx, args[0])
		if err != nil {
			return err
		}
		printRecords(records)
		return nil
	},
}

// metadata command

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Collect and inspect metadata snapshots",
}

var metadataCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect site metadata into a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeNames, _ := cmd.Flags().GetStringSlice("types")
		includeViews, _ := cmd.Flags().GetBool("include-views")
		includeConnections, _ := cmd.Flags().GetBool("include-connections")
		includeLineage, _ := cmd.Flags().GetBool("include-lineage")
		format, _ := cmd.Flags().GetString("format")
		targets, _ := cmd.Flags().GetStringSlice("target")

		enc, err := codec.ParseEncoding(format)
		if err != nil {
			return err
		}

		var kinds []meta.Kind
		for _, name := range typeNames {
			kind, err := meta.ParseKind(name)
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}

		a, err := newApp("Collect")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		opts := meta.CollectOptions{
			Kinds:              kinds,
			Filters:            filtersFromFlags(cmd),
			IncludeViews:       includeViews,
			IncludeConnections: includeConnections,
			IncludeLineage:     includeLineage,
		}

		s, filename, results, err := a.Collect(ctx, opts, targets, enc)
		if err != nil {
			return err
		}

		fmt.Printf("Collected %d record(s) into %s\n", len(s.Records), filename)
		for kind, n := range s.Counts() {
			fmt.Printf("  %-12s %d\n", kind, n)
		}
		for _, r := range results {
			if r.Failed() {
				fmt.Printf("FAILED  %s: %v\n", r.Target, r.Err)
				continue
			}
			fmt.Printf("written %s\n", r.Location)
		}
		return nil
	},
}

var metadataListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp("ListSnapshots")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		names, desc, err := a.ListSnapshots(ctx, target)
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Printf("No snapshots at %s.\n", desc)
			return nil
		}
		fmt.Printf("Snapshots at %s:\n", desc)
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var metadataShowCmd = &cobra.Command{
	Use:   "show FILENAME",
	Short: "Summarize one stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		summary, _ := cmd.Flags().GetBool("summary")

		a, err := newApp("ShowSnapshot")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		s, err := a.LoadSnapshot(ctx, target, args[0])
		if err != nil {
			return err
		}

		site := s.Server.Site
		if site == "" {
			site = "(default)"
		}
		fmt.Printf("Snapshot:  %s\n", s.ID)
		fmt.Printf("Server:    %s\n", s.Server.ServerURL)
		fmt.Printf("Site:      %s\n", site)
		fmt.Printf("Collected: %s\n", s.CollectedAt.Format("2006-01-02 15:04:05 MST"))
		if !s.Filters.IsZero() {
			fmt.Printf("Filters:   projects=%v owners=%v tags=%v\n",
				s.Filters.Projects, s.Filters.Owners, s.Filters.Tags)
		}
		fmt.Printf("Records:   %d\n", len(s.Records))
		for kind, n := range s.Counts() {
			fmt.Printf("  %-12s %d\n", kind, n)
		}
		if !summary {
			fmt.Println()
			printRecords(s.Records)
		}
		return nil
	},
}

var metadataLineageCmd = &cobra.Command{
	Use:   "lineage ID",
	Short: "Show dependency lineage for a workbook or data source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Lineage")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		lineage, err := a.Lineage(ctx, args[0])
		if err != nil {
			return err
		}

		printLineage(lineage)
		return nil
	},
}

// printLineage renders the nested lineage map as an indented tree.
func printLineage(lineage map[string]any) {
	fmt.Printf("%v (%v)\n", lineage["name"], lineage["luid"])
	printLineageEdges(lineage, "upstreamDatasources", "upstream datasource")
	printLineageEdges(lineage, "upstreamTables", "upstream table")
	printLineageEdges(lineage, "downstreamWorkbooks", "downstream workbook")
	printLineageEdges(lineage, "sheets", "sheet")
}

func printLineageEdges(lineage map[string]any, key, label string) {
	edges, _ := lineage[key].([]any)
	for _, e := range edges {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("  %-21s %v\n", label, m["name"])
		printLineageEdges(m, "upstreamTables", "  upstream table")
	}
}

// export command

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots and reports",
}

var exportMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Re-render a stored snapshot to another format",
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString("filename")
		target, _ := cmd.Flags().GetString("target")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		enc, err := codec.ParseEncoding(format)
		if err != nil {
			return err
		}

		a, err := newApp("ExportSnapshot")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		outPath, err := a.ExportSnapshot(ctx, target, filename, enc, filtersFromFlags(cmd), output)
		if err != nil {
			return err
		}

		fmt.Printf("Exported to %s\n", outPath)
		return nil
	},
}

var exportReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Collect a fresh inventory and write it as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("Report")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		defer a.Close(ctx)

		if err := a.Connect(ctx, false); err != nil {
			return err
		}

		outPath, s, err := a.Report(ctx, filtersFromFlags(cmd), output)
		if err != nil {
			return err
		}

		fmt.Printf("Report with %d record(s) written to %s\n", len(s.Records), outPath)
		return nil
	},
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Snapshot Dir: %s\n", defaults["snapshot_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		if cfg.APIVersion != "" {
			fmt.Printf("API Version: %s\n", cfg.APIVersion)
		}
		fmt.Printf("Targets:\n")
		for _, t := range cfg.Targets {
			switch t.Type {
			case "local":
				fmt.Printf("  %-10s local  %s\n", t.Name, t.Dir)
			case "s3":
				fmt.Printf("  %-10s s3     s3://%s/%s\n", t.Name, t.S3Bucket, t.S3Prefix)
			default:
				fmt.Printf("  %-10s %s\n", t.Name, t.Type)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output and HTTP traffic")

	// auth subcommands
	authCmd.AddCommand(authSetupCmd)
	authCmd.AddCommand(authTestCmd)
	authCmd.AddCommand(authInfoCmd)

	// explore subcommands
	exploreCmd.AddCommand(newExploreListCmd("workbooks", meta.KindWorkbook))
	exploreCmd.AddCommand(newExploreListCmd("datasources", meta.KindDatasource))
	exploreCmd.AddCommand(newExploreListCmd("projects", meta.KindProject))
	exploreCmd.AddCommand(newExploreListCmd("flows", meta.KindFlow))
	exploreCmd.AddCommand(exploreWorkbookCmd)
	exploreCmd.AddCommand(exploreSearchCmd)

	// metadata subcommands
	metadataCmd.AddCommand(metadataCollectCmd)
	metadataCollectCmd.Flags().StringSlice("types", nil, "Artifact kinds to collect (workbooks,datasources,projects,flows)")
	metadataCollectCmd.Flags().Bool("include-views", false, "Include each workbook's views")
	metadataCollectCmd.Flags().Bool("include-connections", false, "Include workbook and data source connections")
	metadataCollectCmd.Flags().Bool("include-lineage", false, "Include lineage from the Metadata API")
	metadataCollectCmd.Flags().StringP("format", "f", "json", "Snapshot format (json, json_gz, csv, xlsx)")
	metadataCollectCmd.Flags().StringSlice("target", nil, "Storage targets to write to (default: all configured)")
	addFilterFlags(metadataCollectCmd)

	metadataCmd.AddCommand(metadataListCmd)
	metadataListCmd.Flags().String("target", "", "Storage target to list (default: first configured)")

	metadataCmd.AddCommand(metadataShowCmd)
	metadataShowCmd.Flags().String("target", "", "Storage target to read from (default: first configured)")
	metadataShowCmd.Flags().Bool("summary", false, "Print only the snapshot header and counts")

	metadataCmd.AddCommand(metadataLineageCmd)

	// export subcommands
	exportCmd.AddCommand(exportMetadataCmd)
	exportMetadataCmd.Flags().String("filename", "", "Stored snapshot to export")
	exportMetadataCmd.MarkFlagRequired("filename")
	exportMetadataCmd.Flags().String("target", "", "Storage target to read from (default: first configured)")
	exportMetadataCmd.Flags().StringP("format", "f", "json", "Output format (json, json_gz, csv, xlsx)")
	exportMetadataCmd.Flags().StringP("output", "o", "", "Output path (default: derived from the snapshot)")
	addFilterFlags(exportMetadataCmd)

	exportCmd.AddCommand(exportReportCmd)
	exportReportCmd.Flags().StringP("output", "o", "", "Output path (default: derived from the snapshot)")
	addFilterFlags(exportReportCmd)

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
