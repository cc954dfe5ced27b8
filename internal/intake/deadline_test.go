package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-03 was a Wednesday, 2024-01-01 a Monday.
var (
	refWednesday = time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)
	refMonday    = time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
)

func TestResolveDeadline(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		now     time.Time
		want    time.Time
		phrase  string
		matched bool
	}{
		{
			name:    "today resolves to end of reference day",
			text:    "finish it today please",
			now:     refWednesday,
			want:    time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC),
			phrase:  "today",
			matched: true,
		},
		{
			name:    "tomorrow from wednesday is thursday end of day",
			text:    "send the draft tomorrow",
			now:     refWednesday,
			want:    time.Date(2024, 1, 4, 23, 59, 59, 0, time.UTC),
			phrase:  "tomorrow",
			matched: true,
		},
		{
			name:    "next wednesday on a wednesday is a full week away",
			text:    "review by next Wednesday",
			now:     refWednesday,
			want:    time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC),
			phrase:  "next Wednesday",
			matched: true,
		},
		{
			name:    "next friday from monday is the same week",
			text:    "ship by next Friday",
			now:     refMonday,
			want:    time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC),
			phrase:  "next Friday",
			matched: true,
		},
		{
			name:    "bare weekday counts today when it matches",
			text:    "wednesday works",
			now:     refWednesday,
			want:    time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC),
			phrase:  "wednesday",
			matched: true,
		},
		{
			name:    "bare weekday ahead in the week",
			text:    "by friday",
			now:     refWednesday,
			want:    time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC),
			phrase:  "friday",
			matched: true,
		},
		{
			name:    "numeric day first date",
			text:    "deliver by 15/02",
			now:     refWednesday,
			want:    time.Date(2024, 2, 15, 23, 59, 59, 0, time.UTC),
			phrase:  "15/02",
			matched: true,
		},
		{
			name:    "numeric date with explicit year",
			text:    "deliver by 15-02-2025",
			now:     refWednesday,
			want:    time.Date(2025, 2, 15, 23, 59, 59, 0, time.UTC),
			phrase:  "15-02-2025",
			matched: true,
		},
		{
			name:    "yearless past date rolls into next year",
			text:    "pay by 01/01",
			now:     refWednesday,
			want:    time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC),
			phrase:  "01/01",
			matched: true,
		},
		{
			name:    "month above twelve degrades to unspecified",
			text:    "maybe 05/13",
			now:     refWednesday,
			matched: false,
		},
		{
			name:    "impossible day degrades to unspecified",
			text:    "maybe 31/02",
			now:     refWednesday,
			matched: false,
		},
		{
			name:    "no phrase at all",
			text:    "just do the thing",
			now:     refWednesday,
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, phrase, ok := ResolveDeadline(tt.text, tt.now)
			require.Equal(t, tt.matched, ok)
			if !tt.matched {
				assert.True(t, got.IsZero())
				assert.Empty(t, phrase)
				return
			}
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
			assert.Equal(t, tt.phrase, phrase)
		})
	}
}

func TestResolveDeadlinePhraseKeepsOriginalCasing(t *testing.T) {
	_, phrase, ok := ResolveDeadline("done by TOMORROW", refWednesday)
	require.True(t, ok)
	assert.Equal(t, "TOMORROW", phrase)
}
