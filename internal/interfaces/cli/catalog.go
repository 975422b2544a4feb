package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	domaincatalog "github.com/turtacn/LabelScan-Intelligence/internal/domain/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// NewCatalogCmd creates the catalog command group.
func NewCatalogCmd(deps CommandDependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, validate and publish the risk catalog",
	}
	cmd.AddCommand(
		newCatalogValidateCmd(deps),
		newCatalogShowCmd(deps),
		newCatalogPushCmd(deps),
	)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// validate
// ─────────────────────────────────────────────────────────────────────────────

func newCatalogValidateCmd(deps CommandDependencies) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file or the configured catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cc.withTimeout(cmd.Context())
			defer cancel()

			var report *CatalogReport
			if file != "" {
				src := domaincatalog.FileSource{Path: file}
				cat, issues, err := domaincatalog.Load(ctx, src, domaincatalog.LoadOptions{Strict: false})
				if err != nil {
					return err
				}
				report = newCatalogReport(src.Describe(), cat, issues)
			} else {
				mgr, release, err := deps.OpenCatalog(ctx, cc)
				if err != nil {
					return err
				}
				defer release()
				snap, err := mgr.Snapshot()
				if err != nil {
					return err
				}
				report = reportFromSnapshot(snap)
			}

			if err := PrintResult(cmd, report); err != nil {
				return err
			}
			return domaincatalog.ValidationError(report.Issues)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file to validate (.yaml, .yml or .json)")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// show
// ─────────────────────────────────────────────────────────────────────────────

func newCatalogShowCmd(deps CommandDependencies) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the entries of the configured catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cc.withTimeout(cmd.Context())
			defer cancel()

			mgr, release, err := deps.OpenCatalog(ctx, cc)
			if err != nil {
				return err
			}
			defer release()

			cat := mgr.Catalog()
			listing := &CatalogListing{Version: cat.Version()}
			for _, e := range cat.Entries() {
				if category != "" && !strings.EqualFold(e.Category, category) {
					continue
				}
				listing.Entries = append(listing.Entries, e)
			}
			return PrintResult(cmd, listing)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list entries of this category")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// push
// ─────────────────────────────────────────────────────────────────────────────

func newCatalogPushCmd(deps CommandDependencies) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Validate a catalog file and upload it to object storage",
		Long: "Validate a catalog file and upload it to catalog.object_key in the catalog bucket.\n" +
			"API servers using the minio catalog source pick it up on their next reload.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				if os.IsNotExist(err) {
					return errors.Wrap(err, errors.ErrCodeCatalogNotFound, "catalog file not found").WithDetail(file)
				}
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to read catalog file").WithDetail(file)
			}

			ctx, cancel := cc.withTimeout(cmd.Context())
			defer cancel()

			store, release, err := deps.OpenCatalogStore(ctx, cc)
			if err != nil {
				return err
			}
			defer release()

			cat, err := store.Publish(ctx, data)
			if err != nil {
				return err
			}
			cc.Logger.Info("catalog published",
				logging.String("target", store.Describe()),
				logging.String("version", cat.Version()),
				logging.Int("entries", cat.Len()))
			PrintSuccess(cmd, fmt.Sprintf("published catalog %s (%d entries) to %s", cat.Version(), cat.Len(), store.Describe()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file to publish")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Printable results
// ─────────────────────────────────────────────────────────────────────────────

// CatalogReport summarises a catalog and its validation issues.
type CatalogReport struct {
	Source      string                `json:"source"`
	Version     string                `json:"version"`
	Fingerprint string                `json:"fingerprint"`
	Entries     int                   `json:"entries"`
	Categories  []string              `json:"categories"`
	Valid       bool                  `json:"valid"`
	Issues      []domaincatalog.Issue `json:"issues"`
}

func newCatalogReport(source string, cat *domaincatalog.Catalog, issues []domaincatalog.Issue) *CatalogReport {
	if issues == nil {
		issues = []domaincatalog.Issue{}
	}
	return &CatalogReport{
		Source:      source,
		Version:     cat.Version(),
		Fingerprint: cat.Fingerprint(),
		Entries:     cat.Len(),
		Categories:  cat.Categories(),
		Valid:       !domaincatalog.HasErrors(issues),
		Issues:      issues,
	}
}

func reportFromSnapshot(s *appcatalog.Snapshot) *CatalogReport {
	return &CatalogReport{
		Source:      s.Source,
		Version:     s.Version,
		Fingerprint: s.Fingerprint,
		Entries:     s.Entries,
		Categories:  s.Categories,
		Valid:       !domaincatalog.HasErrors(s.Issues),
		Issues:      s.Issues,
	}
}

// TableCaption implements tableCaptioner.
func (r *CatalogReport) TableCaption() string {
	status := color.GreenString("valid")
	if !r.Valid {
		status = color.RedString("invalid")
	}
	return fmt.Sprintf("%s: version %s, %d entries, %s", r.Source, r.Version, r.Entries, status)
}

// TableHeaders implements tableProvider.
func (r *CatalogReport) TableHeaders() []string {
	return []string{"Index", "Entry", "Severity", "Message"}
}

// TableRows implements tableProvider.
func (r *CatalogReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		rows = append(rows, []string{strconv.Itoa(is.Index), is.Entry, string(is.Severity), is.Message})
	}
	return rows
}

func (r *CatalogReport) String() string {
	var sb strings.Builder
	sb.WriteString(r.TableCaption())
	for _, is := range r.Issues {
		sb.WriteString("\n  ")
		sb.WriteString(is.String())
	}
	return sb.String()
}

// CatalogListing is the entry list printed by catalog show.
type CatalogListing struct {
	Version string                `json:"version"`
	Entries []domaincatalog.Entry `json:"entries"`
}

// TableCaption implements tableCaptioner.
func (l *CatalogListing) TableCaption() string {
	return fmt.Sprintf("catalog %s: %d entries", l.Version, len(l.Entries))
}

// TableHeaders implements tableProvider.
func (l *CatalogListing) TableHeaders() []string {
	return []string{"#", "Name", "E-Number", "Tier", "Penalty", "Category"}
}

// TableRows implements tableProvider.
func (l *CatalogListing) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Entries))
	for i := range l.Entries {
		e := &l.Entries[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.PrimaryName(),
			e.ENumber,
			string(e.Tier),
			strconv.FormatFloat(e.Penalty, 'f', -1, 64),
			e.Category,
		})
	}
	return rows
}

func (l *CatalogListing) String() string {
	var sb strings.Builder
	sb.WriteString(l.TableCaption())
	for i := range l.Entries {
		e := &l.Entries[i]
		fmt.Fprintf(&sb, "\n  %-40s %-14s %-15s %6.1f  %s", e.PrimaryName(), e.ENumber, e.Tier, e.Penalty, e.Category)
	}
	return sb.String()
}

//Personal.AI order the ending
