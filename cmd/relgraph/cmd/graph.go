package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/database"
	"github.com/dbsmedya/relgraph/internal/graph"
	"github.com/dbsmedya/relgraph/internal/roles"
	"github.com/dbsmedya/relgraph/internal/store"
	"github.com/dbsmedya/relgraph/internal/types"
)

var (
	graphKind      string
	graphID        int64
	graphRoles     []string
	graphDegree    int
	graphMaxNodes  int
	graphLinkRatio float64
	graphFormat    string
	graphPage      int
	graphReleases  string
	graphEntities  string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the paginated neighborhood of an artist or label",
	Long: `Graph expands the neighborhood of an entity breadth-first over the
selected roles and splits it into pages. Every link is shown on at least one
page together with both of its endpoints.

Query settings default to the "query" section of the configuration. With the
memory store, --file and --entities load feeds before the query runs.

Output formats:
  - text: node and link tables per page
  - json: the full result, or one page with --page
  - mermaid: flowchart of one page (default page 1)

Example:
  relgraph graph --kind artist --id 152882 --roles "Alias,Member Of" --degree 2 --max-nodes 5`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphKind, "kind", "k", "artist",
		"Entity kind (artist or label)")
	graphCmd.Flags().Int64Var(&graphID, "id", 0,
		"Entity id (required)")
	graphCmd.MarkFlagRequired("id")
	graphCmd.Flags().StringSliceVarP(&graphRoles, "roles", "r", nil,
		"Comma-separated roles to follow (default from config)")
	graphCmd.Flags().IntVarP(&graphDegree, "degree", "d", 0,
		"Maximum distance from the center (default from config)")
	graphCmd.Flags().IntVar(&graphMaxNodes, "max-nodes", 0,
		"Page budget in nodes (default from config)")
	graphCmd.Flags().Float64Var(&graphLinkRatio, "link-ratio", 0,
		"Page budget as a link-to-node ratio; takes precedence over --max-nodes")
	graphCmd.Flags().StringVarP(&graphFormat, "format", "o", "text",
		"Output format (text, json, mermaid)")
	graphCmd.Flags().IntVarP(&graphPage, "page", "p", 0,
		"Show only this page (1-based)")
	graphCmd.Flags().StringVarP(&graphReleases, "file", "f", "",
		"Release feed to load before querying")
	graphCmd.Flags().StringVar(&graphEntities, "entities", "",
		"Entity feed to load before querying")

	rootCmd.AddCommand(graphCmd)
}

// graphQuery is the effective query after applying flags to config defaults.
type graphQuery struct {
	center    types.EntityRef
	roles     []string
	maxDegree int
	budget    graph.Budget
}

func buildGraphQuery(cmd *cobra.Command, q *config.QueryConfig, canon *roles.Canonicalizer) (*graphQuery, error) {
	kind, err := types.ParseEntityKind(graphKind)
	if err != nil {
		return nil, err
	}
	if graphID <= 0 {
		return nil, fmt.Errorf("--id must be positive, got %d", graphID)
	}

	query := &graphQuery{
		center:    types.EntityRef{Kind: kind, ID: graphID},
		roles:     q.Roles,
		maxDegree: q.MaxDegree,
		budget:    graph.Budget{MaxNodes: q.MaxNodes, LinkRatio: q.LinkRatio},
	}

	flags := cmd.Flags()
	if flags.Changed("roles") {
		query.roles = nil
		for _, raw := range graphRoles {
			role, ok := canon.Lookup(canon.Canonicalize(raw))
			if !ok {
				return nil, fmt.Errorf("unknown role %q", raw)
			}
			query.roles = append(query.roles, role)
		}
	}
	if flags.Changed("degree") {
		query.maxDegree = graphDegree
	}
	if flags.Changed("max-nodes") {
		query.budget = graph.Budget{MaxNodes: graphMaxNodes}
	}
	if flags.Changed("link-ratio") {
		query.budget.LinkRatio = graphLinkRatio
	}
	if query.maxDegree < 0 {
		return nil, fmt.Errorf("--degree cannot be negative, got %d", query.maxDegree)
	}
	return query, nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	switch graphFormat {
	case "text", "json", "mermaid":
	default:
		return fmt.Errorf("unknown format %q (must be text, json or mermaid)", graphFormat)
	}

	cfg, log, err := setup(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	canon, err := newCanonicalizer(cfg, log)
	if err != nil {
		return err
	}
	query, err := buildGraphQuery(cmd, &cfg.Query, canon)
	if err != nil {
		return err
	}

	ctx := database.SetupSignalHandler()

	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	if graphReleases != "" || graphEntities != "" {
		if err := loadFeeds(ctx, cfg, log, s, io.Discard, graphEntities, graphReleases); err != nil {
			return err
		}
	}

	res, err := graph.NewEngine(s, log).TraverseAndPaginate(ctx, query.center, query.roles, query.maxDegree, query.budget)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s not found in store", query.center.Key())
	}
	if err != nil {
		return err
	}

	var page *graph.Page
	if graphPage > 0 {
		if page, err = res.Page(graphPage); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch graphFormat {
	case "json":
		return writeJSON(out, res, page)
	case "mermaid":
		if page == nil {
			page = res.Pages()[0]
		}
		fprintf(out, "%s", graph.RenderMermaid(page))
		return nil
	default:
		writeText(out, res, query, page)
		return nil
	}
}

// pagedResult is the JSON form of a result with its pages inlined.
type pagedResult struct {
	*graph.Result
	Pages []*graph.Page `json:"pages"`
}

func writeJSON(out io.Writer, res *graph.Result, page *graph.Page) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if page != nil {
		return enc.Encode(page)
	}
	return enc.Encode(pagedResult{Result: res, Pages: res.Pages()})
}

func writeText(out io.Writer, res *graph.Result, query *graphQuery, only *graph.Page) {
	center := res.Center
	for _, n := range res.Nodes {
		if n.Key == res.Center && n.Name != "" {
			center = fmt.Sprintf("%s (%s)", res.Center, n.Name)
		}
	}

	printHeader(out, "Neighborhood of %s", center)
	fprintf(out, "Roles: %s  Degree: %d  Nodes: %d  Links: %d  Pages: %d\n\n",
		strings.Join(query.roles, ", "), query.maxDegree, len(res.Nodes), len(res.Links), res.PageCount)

	for _, page := range res.Pages() {
		if only != nil && page.Number != only.Number {
			continue
		}
		printSection(out, fmt.Sprintf("Page %d of %d", page.Number, res.PageCount))

		nodes := newTable("KEY", "NAME", "DIST", "SIZE", "MISSING", "CLUSTER")
		for _, n := range page.Nodes {
			missing := n.Missing
			if m, ok := n.MissingByPage[page.Number]; ok {
				missing = m
			}
			cluster := ""
			if n.Cluster > 0 {
				cluster = strconv.Itoa(n.Cluster)
			}
			cells := []string{n.Key, n.Name, strconv.Itoa(n.Distance), strconv.Itoa(n.Size), strconv.Itoa(missing), cluster}
			if n.Key == res.Center {
				nodes.addHighlighted(cells...)
			} else {
				nodes.add(cells...)
			}
		}
		nodes.write(out)
		fprintf(out, "\n")

		links := newTable("SOURCE", "ROLE", "TARGET", "DIST")
		for _, l := range page.Links {
			links.add(l.Source, l.Role, l.Target, strconv.Itoa(l.Distance))
		}
		links.write(out)
		fprintf(out, "\n")
	}
}
