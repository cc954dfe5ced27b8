package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserParse(t *testing.T) {
	parser := NewParser(DefaultMinIDDigits)

	t.Run("full message with id and deadline", func(t *testing.T) {
		draft, err := parser.Parse("Assign project alpha to user 123456789 by next Friday", refMonday)
		require.NoError(t, err)

		assert.Equal(t, int64(123456789), draft.AssigneeID)
		// Matched tokens are cut out, interior whitespace stays as typed.
		assert.Equal(t, "Assign project alpha to user  by", draft.Description)
		assert.True(t, draft.Deadline.Equal(time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC)))
	})

	t.Run("missing deadline is not an error", func(t *testing.T) {
		draft, err := parser.Parse("Prepare the slides for 987654321", refWednesday)
		require.NoError(t, err)

		assert.Equal(t, int64(987654321), draft.AssigneeID)
		assert.Equal(t, "Prepare the slides for", draft.Description)
		assert.True(t, draft.Deadline.IsZero())
	})

	t.Run("missing assignee fails", func(t *testing.T) {
		_, err := parser.Parse("Prepare the slides by tomorrow", refWednesday)
		assert.ErrorIs(t, err, ErrNoAssignee)
	})

	t.Run("message of nothing but tokens fails", func(t *testing.T) {
		_, err := parser.Parse("  123456789 tomorrow ", refWednesday)
		assert.ErrorIs(t, err, ErrEmptyDescription)
	})

	t.Run("unresolvable numeric date leaves the text alone", func(t *testing.T) {
		draft, err := parser.Parse("Audit 123456789 by 05/13", refWednesday)
		require.NoError(t, err)

		assert.Equal(t, "Audit  by 05/13", draft.Description)
		assert.True(t, draft.Deadline.IsZero())
	})

	t.Run("deadline scan runs after id removal", func(t *testing.T) {
		// The digit run must not shadow the date that follows it.
		draft, err := parser.Parse("Report for 555555555 due 15/02", refWednesday)
		require.NoError(t, err)

		assert.Equal(t, int64(555555555), draft.AssigneeID)
		assert.True(t, draft.Deadline.Equal(time.Date(2024, 2, 15, 23, 59, 59, 0, time.UTC)))
	})
}
