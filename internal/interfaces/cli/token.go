package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// NewTokenCmd creates the token command group used to mint development
// bearer tokens signed with auth.jwt_secret.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue bearer tokens for the API",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token whose subject becomes the scan owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return errors.InvalidParam("--ttl must be positive")
			}
			v, err := token.NewVerifier(cc.Config.Auth)
			if err != nil {
				return err
			}
			signed, err := v.Issue(subject, ttl)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &IssuedToken{
				Token:     signed,
				Subject:   subject,
				ExpiresAt: time.Now().Add(ttl).UTC(),
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, used as owner id (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// IssuedToken is the printable result of token issue.
type IssuedToken struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// String prints the bare token so it can be captured by a shell.
func (t *IssuedToken) String() string { return t.Token }

//Personal.AI order the ending
