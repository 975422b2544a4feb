package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

type fakeMigrator struct {
	version uint
	dirty   bool
	latest  uint
	calls   []string
	closed  bool
	upErr   error
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	if f.upErr != nil {
		return f.upErr
	}
	f.version = f.latest
	return nil
}

func (f *fakeMigrator) Down(steps int) error {
	f.calls = append(f.calls, "down")
	if uint(steps) > f.version {
		f.version = 0
		return nil
	}
	f.version -= uint(steps)
	return nil
}

func (f *fakeMigrator) Status() (uint, bool, error) { return f.version, f.dirty, nil }

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	f.version = uint(version)
	f.dirty = false
	return nil
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

func migratorDeps(mg *fakeMigrator) CommandDependencies {
	return CommandDependencies{
		OpenMigrator: func(context.Context, *CLIContext) (Migrator, error) { return mg, nil },
	}
}

func TestMigrateCmd(t *testing.T) {
	tests := []struct {
		name        string
		start       uint
		dirty       bool
		args        []string
		wantVersion uint
		wantCalls   []string
	}{
		{"up", 0, false, []string{"migrate", "up"}, 3, []string{"up"}},
		{"down default one step", 3, false, []string{"migrate", "down"}, 2, []string{"down"}},
		{"down two steps", 3, false, []string{"migrate", "down", "--steps", "2"}, 1, []string{"down"}},
		{"status", 2, false, []string{"migrate", "status"}, 2, nil},
		{"force clears dirty", 2, true, []string{"migrate", "force", "1"}, 1, []string{"force"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mg := &fakeMigrator{version: tc.start, dirty: tc.dirty, latest: 3}
			out, err := runCLI(t, migratorDeps(mg), "", append(tc.args, "-o", "json")...)
			require.NoError(t, err)

			var st MigrationStatus
			require.NoError(t, json.Unmarshal([]byte(out), &st))
			assert.Equal(t, tc.wantVersion, st.Version)
			assert.False(t, st.Dirty)
			assert.Equal(t, tc.wantCalls, mg.calls)
			assert.True(t, mg.closed)
		})
	}
}

func TestMigrateCmd_Errors(t *testing.T) {
	mg := &fakeMigrator{latest: 3, upErr: apperrors.New(apperrors.ErrCodeDatabaseError, "migration up failed")}

	_, err := runCLI(t, migratorDeps(mg), "", "migrate", "up")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
	assert.True(t, mg.closed)

	_, err = runCLI(t, migratorDeps(&fakeMigrator{}), "", "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))

	_, err = runCLI(t, migratorDeps(&fakeMigrator{}), "", "migrate", "force", "abc")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
}

func TestMigrationStatus_String(t *testing.T) {
	assert.Equal(t, "schema version 4", (&MigrationStatus{Version: 4}).String())
	assert.Equal(t, "schema version 4 (dirty)", (&MigrationStatus{Version: 4, Dirty: true}).String())
}

//Personal.AI order the ending
