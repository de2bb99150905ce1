package models

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// The direction constants must match the values admitted by the
// warehouse_movements CHECK constraint, otherwise every movement
// insert fails with a check violation and rolls back the stock write.
func TestMovementDirectionsMatchSchema(t *testing.T) {
	ddl, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	require.Contains(t, string(ddl),
		fmt.Sprintf("direction IN ('%s', '%s')", MovementIn, MovementOut))
}
