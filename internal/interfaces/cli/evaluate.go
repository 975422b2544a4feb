package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/intelligence/extractor"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// maxInputSize bounds --file and stdin reads.
const maxInputSize = 1 << 20

type evaluateOptions struct {
	text      string
	file      string
	frequency string
	ocr       bool
}

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd(deps CommandDependencies) *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an ingredient list",
		Long: "Score an ingredient list against the configured catalog.  The list is read from\n" +
			"--text, --file (\"-\" for stdin) or stdin, in that order.",
		Example: "  labelscan evaluate --text \"Sugar, Palm Oil, Salt\" --frequency Daily\n" +
			"  ocr-tool label.jpg | labelscan evaluate --ocr -o table",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, deps, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.text, "text", "t", "", "ingredient list text")
	f.StringVarP(&opts.file, "file", "f", "", "read the ingredient list from a file (\"-\" for stdin)")
	f.StringVar(&opts.frequency, "frequency", "", "consumption frequency: Daily, Weekly or Rare (default: scoring.default_frequency)")
	f.BoolVar(&opts.ocr, "ocr", false, "treat the input as raw OCR text and keep only the part after \"Ingredients\"")
	return cmd
}

func runEvaluate(cmd *cobra.Command, deps CommandDependencies, opts *evaluateOptions) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	label := opts.frequency
	if label == "" {
		label = cc.Config.Scoring.DefaultFrequency
	}
	freq, err := scoring.ParseFrequency(label)
	if err != nil {
		return err
	}

	text, err := readIngredientText(cmd, opts)
	if err != nil {
		return err
	}
	if opts.ocr {
		text = extractor.ExtractIngredients(text)
	}
	text = strings.TrimSpace(text)

	ctx, cancel := cc.withTimeout(cmd.Context())
	defer cancel()

	mgr, release, err := deps.OpenCatalog(ctx, cc)
	if err != nil {
		return err
	}
	defer release()

	eng := mgr.Engine()
	res, err := eng.Evaluate(text, freq)
	if err != nil {
		return err
	}
	cc.Logger.Debug("evaluation finished",
		logging.String("catalog_version", eng.CatalogVersion()),
		logging.Int("score", res.Score),
		logging.Int("risks", len(res.Risks)))

	return PrintResult(cmd, &EvaluationReport{
		Frequency:      freq,
		CatalogVersion: eng.CatalogVersion(),
		ScoreResult:    res,
	})
}

func readIngredientText(cmd *cobra.Command, opts *evaluateOptions) (string, error) {
	if opts.text != "" {
		if opts.file != "" {
			return "", errors.InvalidParam("--text and --file are mutually exclusive")
		}
		return opts.text, nil
	}
	var r io.Reader = cmd.InOrStdin()
	if opts.file != "" && opts.file != "-" {
		fh, err := os.Open(opts.file)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFound("input file not found").WithDetail(opts.file)
			}
			return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to open input file").WithDetail(opts.file)
		}
		defer fh.Close()
		r = fh
	}
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to read input")
	}
	if len(data) > maxInputSize {
		return "", errors.InvalidParam("input exceeds 1 MiB")
	}
	return string(data), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// EvaluationReport
// ─────────────────────────────────────────────────────────────────────────────

// EvaluationReport is the printable result of one evaluation.
type EvaluationReport struct {
	Frequency      scoring.Frequency `json:"frequency"`
	CatalogVersion string            `json:"catalog_version"`
	*scoring.ScoreResult
}

// TableCaption implements tableCaptioner.
func (r *EvaluationReport) TableCaption() string {
	return fmt.Sprintf("Score: %d/100  Grade: %s (%s)  [%s, catalog %s]",
		r.Score, colorGrade(r.Grade), r.Meaning, r.Frequency, r.CatalogVersion)
}

// TableHeaders implements tableProvider.
func (r *EvaluationReport) TableHeaders() []string {
	return []string{"Pos", "Ingredient", "Risk", "Tier", "Penalty", "Category"}
}

// TableRows implements tableProvider.
func (r *EvaluationReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Risks)+len(r.RulePenalties))
	for _, risk := range r.Risks {
		rows = append(rows, []string{
			strconv.Itoa(risk.Evidence.Position),
			risk.Evidence.Token,
			risk.Name,
			risk.Tier,
			strconv.FormatFloat(risk.WeightedPenalty, 'f', 1, 64),
			risk.Category,
		})
	}
	for _, rp := range r.RulePenalties {
		rows = append(rows, []string{"-", "-", rp.Rule, "Rule", strconv.FormatFloat(rp.Penalty, 'f', 1, 64), rp.Explanation})
	}
	return rows
}

// String renders the report for --output text.
func (r *EvaluationReport) String() string {
	var sb strings.Builder
	sb.WriteString(r.TableCaption())
	sb.WriteString("\n")

	if len(r.Risks) == 0 {
		sb.WriteString("No catalogued risks found.\n")
	} else {
		sb.WriteString("Risks:\n")
		for _, risk := range r.Risks {
			fmt.Fprintf(&sb, "  #%d %s -> %s [%s] %.1f (%s)\n",
				risk.Evidence.Position, risk.Evidence.Token, risk.Name, risk.Tier, risk.WeightedPenalty, risk.Category)
		}
	}
	if len(r.RulePenalties) > 0 {
		sb.WriteString("Rules:\n")
		for _, rp := range r.RulePenalties {
			fmt.Fprintf(&sb, "  %s %.1f: %s\n", rp.Rule, rp.Penalty, rp.Explanation)
		}
	}
	if len(r.CategoryBreakdown) > 0 {
		sb.WriteString("Categories:\n")
		names := make([]string, 0, len(r.CategoryBreakdown))
		for name := range r.CategoryBreakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s: %d\n", name, r.CategoryBreakdown[name])
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

//Personal.AI order the ending
