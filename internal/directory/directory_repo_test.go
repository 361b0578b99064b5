package directory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tabintel/attendance/internal/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeFile(t, `
employees:
  - id: EMP001
    facial_id: facial-001
    full_name: John Smith
    department: Engineering
    enrolled_at: 2023-01-09T00:00:00Z
  - id: EMP009
    facial_id: facial-009
    full_name: Former Staff
    status: inactive
`)

	roster, err := directory.LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, directory.StatusActive, roster[0].Status)
	assert.Equal(t, 2023, roster[0].EnrolledAt.Year())

	repo := directory.NewMemoryRepository(roster...)
	active, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "EMP001", active[0].ID)
}

func TestLoadRoster_Invalid(t *testing.T) {
	_, err := directory.LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = directory.LoadRoster(writeFile(t, "employees:\n  - full_name: Nobody\n"))
	assert.Error(t, err)
}
