package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/config"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/auth/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeAuthConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth:\n  enabled: true\n  jwt_secret: " + testSecret + "\n  issuer: labelscan-test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTokenIssueCmd(t *testing.T) {
	cfgPath := writeAuthConfig(t)

	out, err := runCLI(t, CommandDependencies{}, "", "token", "issue", "--subject", "user-1", "--ttl", "1h", "-c", cfgPath, "-o", "json")
	require.NoError(t, err)

	var issued IssuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &issued))
	assert.Equal(t, "user-1", issued.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	v, err := token.NewVerifier(config.AuthConfig{JWTSecret: testSecret, Issuer: "labelscan-test"})
	require.NoError(t, err)
	claims, err := v.ValidateToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenIssueCmd_TextPrintsBareToken(t *testing.T) {
	out, err := runCLI(t, CommandDependencies{}, "", "token", "issue", "--subject", "user-1", "-c", writeAuthConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), ".")))
}

func TestTokenIssueCmd_Errors(t *testing.T) {
	_, err := runCLI(t, CommandDependencies{}, "", "token", "issue", "--subject", "user-1")
	require.Error(t, err, "no secret configured")

	_, err = runCLI(t, CommandDependencies{}, "", "token", "issue", "-c", writeAuthConfig(t))
	require.Error(t, err, "subject is required")

	_, err = runCLI(t, CommandDependencies{}, "", "token", "issue", "--subject", "u", "--ttl", "0s", "-c", writeAuthConfig(t))
	require.Error(t, err)
}

//Personal.AI order the ending
