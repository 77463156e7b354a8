package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

func TestRecorderRecord(t *testing.T) {
	fixed := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	rec := NewRecorder(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "hist-1" }),
	).Record(models.RecordTypeCourse, "course-1", models.StatusDeptReview, models.StatusDraft, "chair-1", "  fix outcomes ")

	assert.Equal(t, "hist-1", rec.ID)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.Equal(t, models.StatusDeptReview, rec.FromStatus)
	assert.Equal(t, models.StatusDraft, rec.ToStatus)
	require.NotNil(t, rec.Comment)
	assert.Equal(t, "fix outcomes", *rec.Comment)
}

func TestRecorderGeneratesUniqueIDs(t *testing.T) {
	r := NewRecorder()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := r.Record(models.RecordTypeProgram, "p", models.StatusDraft, models.StatusReview, "u", "")
		require.False(t, seen[rec.ID])
		seen[rec.ID] = true
		assert.Nil(t, rec.Comment)
		assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	}
}
