package execute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"audiovert/internal/rules"
)

func mustCondition(t *testing.T, value string) rules.Condition {
	t.Helper()
	c, err := rules.ParseCondition(value)
	require.NoError(t, err)
	return c
}
