package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/relgraph/internal/roles"
)

var rolesCategory string

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Inspect the credit role taxonomy",
	Long: `Roles canonicalizes raw credit roles and lists the canonical taxonomy.

Example:
  relgraph roles canonicalize "remix and mastered by" "A&R"
  relgraph roles list --category Technical`,
}

var rolesCanonicalizeCmd = &cobra.Command{
	Use:   "canonicalize <raw-role>...",
	Short: "Show how raw credit roles resolve",
	Long: `Canonicalize splits each raw credit on " & " and " and ", normalizes
every part and looks it up in the taxonomy. Parts that do not resolve are
shown with "-" and are dropped during extraction.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRolesCanonicalize,
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List canonical roles by category",
	Args:  cobra.NoArgs,
	RunE:  runRolesList,
}

func init() {
	rolesListCmd.Flags().StringVar(&rolesCategory, "category", "",
		"Only list roles of this category")

	rolesCmd.AddCommand(rolesCanonicalizeCmd, rolesListCmd)
	rootCmd.AddCommand(rolesCmd)
}

func runRolesCanonicalize(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	canon, err := newCanonicalizer(cfg, log)
	if err != nil {
		return err
	}

	t := newTable("RAW", "PART", "CANONICAL", "ROLE")
	for _, raw := range args {
		for _, part := range roles.SplitCredit(raw) {
			canonical := canon.Canonicalize(part)
			resolved, ok := canon.Lookup(canonical)
			if !ok {
				resolved = "-"
			}
			t.add(raw, part, canonical, resolved)
		}
	}
	t.write(cmd.OutOrStdout())
	return nil
}

func runRolesList(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	canon, err := newCanonicalizer(cfg, log)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	groups := canon.Taxonomy().ByCategory()
	found := false
	for el := groups.Front(); el != nil; el = el.Next() {
		if rolesCategory != "" && !strings.EqualFold(el.Key, rolesCategory) {
			continue
		}
		found = true
		printSection(out, fmt.Sprintf("%s (%d)", el.Key, len(el.Value)))
		for _, d := range el.Value {
			if d.Subcategory != "" {
				fprintf(out, "  %s (%s)\n", d.Name, d.Subcategory)
			} else {
				fprintf(out, "  %s\n", d.Name)
			}
		}
		fprintf(out, "\n")
	}
	if !found {
		return fmt.Errorf("no roles in category %q", rolesCategory)
	}
	return nil
}
