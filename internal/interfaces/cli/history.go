package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// NewHistoryCmd creates the history command group.  Every subcommand acts on
// behalf of --owner, with the same ownership checks the API applies.
func NewHistoryCmd(deps CommandDependencies) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, inspect, recompute and delete saved scans",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", "", "owner id the scans belong to (required)")
	_ = cmd.MarkPersistentFlagRequired("owner")

	cmd.AddCommand(
		newHistoryListCmd(deps, &owner),
		newHistoryShowCmd(deps, &owner),
		newHistoryRecomputeCmd(deps, &owner),
		newHistoryDeleteCmd(deps, &owner),
	)
	return cmd
}

// withScans opens the scan service for the duration of fn.
func withScans(cmd *cobra.Command, deps CommandDependencies, fn func(cc *CLIContext, svc appscan.Service) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cc.withTimeout(cmd.Context())
	defer cancel()
	cmd.SetContext(ctx)

	svc, release, err := deps.OpenScans(ctx, cc)
	if err != nil {
		return err
	}
	defer release()
	return fn(cc, svc)
}

func requireOwner(owner *string) (string, error) {
	o := strings.TrimSpace(*owner)
	if o == "" {
		return "", errors.InvalidParam("--owner is required")
	}
	return o, nil
}

func newHistoryListCmd(deps CommandDependencies, owner *string) *cobra.Command {
	var (
		page, pageSize int
		frequency      string
		grade          string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := requireOwner(owner)
			if err != nil {
				return err
			}
			q := appscan.HistoryQuery{Page: page, PageSize: pageSize}
			if frequency != "" {
				if q.Frequency, err = scoring.ParseFrequency(frequency); err != nil {
					return err
				}
			}
			if grade != "" {
				q.Grade = scoring.Grade(strings.ToUpper(grade))
				if !q.Grade.Valid() {
					return errors.InvalidParam("unknown grade").WithDetail(grade)
				}
			}
			return withScans(cmd, deps, func(_ *CLIContext, svc appscan.Service) error {
				res, err := svc.History(cmd.Context(), ownerID, q)
				if err != nil {
					return err
				}
				return PrintResult(cmd, &HistoryListing{HistoryPage: res})
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "page number, starting at 1")
	f.IntVar(&pageSize, "page-size", 20, "scans per page (max 100)")
	f.StringVar(&frequency, "frequency", "", "only scans scored under this frequency")
	f.StringVar(&grade, "grade", "", "only scans with this grade (A-F)")
	return cmd
}

func newHistoryShowCmd(deps CommandDependencies, owner *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one saved scan with its full score details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := requireOwner(owner)
			if err != nil {
				return err
			}
			return withScans(cmd, deps, func(_ *CLIContext, svc appscan.Service) error {
				sc, err := svc.Get(cmd.Context(), ownerID, args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, scanReport(sc))
			})
		},
	}
}

func newHistoryRecomputeCmd(deps CommandDependencies, owner *string) *cobra.Command {
	var frequency string
	cmd := &cobra.Command{
		Use:   "recompute <scan-id>",
		Short: "Re-score a saved scan under a different frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := requireOwner(owner)
			if err != nil {
				return err
			}
			freq, err := scoring.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			return withScans(cmd, deps, func(cc *CLIContext, svc appscan.Service) error {
				sc, err := svc.Recompute(cmd.Context(), ownerID, args[0], freq)
				if err != nil {
					return err
				}
				cc.Logger.Info("scan recomputed",
					logging.String("scan_id", sc.ID),
					logging.String("frequency", string(freq)),
					logging.Int("score", sc.Score))
				return PrintResult(cmd, scanReport(sc))
			})
		},
	}
	cmd.Flags().StringVar(&frequency, "frequency", "", "new consumption frequency: Daily, Weekly or Rare (required)")
	_ = cmd.MarkFlagRequired("frequency")
	return cmd
}

func newHistoryDeleteCmd(deps CommandDependencies, owner *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Delete a saved scan and its archived image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := requireOwner(owner)
			if err != nil {
				return err
			}
			return withScans(cmd, deps, func(_ *CLIContext, svc appscan.Service) error {
				if err := svc.Delete(cmd.Context(), ownerID, args[0]); err != nil {
					return err
				}
				PrintSuccess(cmd, "deleted scan "+args[0])
				return nil
			})
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Printable results
// ─────────────────────────────────────────────────────────────────────────────

// HistoryListing is one page of scans.
type HistoryListing struct {
	*appscan.HistoryPage
}

// TableCaption implements tableCaptioner.
func (h *HistoryListing) TableCaption() string {
	return fmt.Sprintf("page %d, %d of %d scans", h.Page, len(h.Items), h.Total)
}

// TableHeaders implements tableProvider.
func (h *HistoryListing) TableHeaders() []string {
	return []string{"ID", "Name", "Score", "Grade", "Frequency", "Created"}
}

// TableRows implements tableProvider.
func (h *HistoryListing) TableRows() [][]string {
	rows := make([][]string, 0, len(h.Items))
	for _, sc := range h.Items {
		rows = append(rows, []string{
			sc.ID,
			sc.Name,
			strconv.Itoa(sc.Score),
			colorGrade(sc.Grade),
			string(sc.Frequency),
			sc.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

func (h *HistoryListing) String() string {
	var sb strings.Builder
	sb.WriteString(h.TableCaption())
	for _, sc := range h.Items {
		fmt.Fprintf(&sb, "\n  %s  %3d %s  %-6s  %s  %s",
			sc.ID, sc.Score, colorGrade(sc.Grade), sc.Frequency, sc.CreatedAt.Format(time.RFC3339), sc.Name)
	}
	return sb.String()
}

// ScanReport is a saved scan with its evaluation rendered like evaluate.
type ScanReport struct {
	*domainscan.Scan
	report *EvaluationReport
}

func scanReport(sc *domainscan.Scan) *ScanReport {
	return &ScanReport{
		Scan: sc,
		report: &EvaluationReport{
			Frequency:      sc.Frequency,
			CatalogVersion: sc.CatalogVersion,
			ScoreResult:    sc.ScoreDetails,
		},
	}
}

// TableCaption implements tableCaptioner.
func (s *ScanReport) TableCaption() string {
	return fmt.Sprintf("%s (%s)\n%s", s.Name, s.ID, s.report.TableCaption())
}

// TableHeaders implements tableProvider.
func (s *ScanReport) TableHeaders() []string { return s.report.TableHeaders() }

// TableRows implements tableProvider.
func (s *ScanReport) TableRows() [][]string { return s.report.TableRows() }

func (s *ScanReport) String() string {
	return fmt.Sprintf("%s (%s) saved %s\n%s", s.Name, s.ID, s.CreatedAt.Format(time.RFC3339), s.report.String())
}

//Personal.AI order the ending
