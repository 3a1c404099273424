package load

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
)

func TestAllocator_External_PassesThrough(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyExternalID)

	id, err := a.Allocate(ctx, Row{Index: 1, ExternalID: "A-018", Name: "Physics"}, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A-018", id)
}

func TestAllocator_External_RequiresID(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyExternalID)

	_, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestAllocator_External_RejectsBatchDuplicate(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyExternalID)

	_, err := a.Allocate(ctx, Row{Index: 1, ExternalID: "A-018"}, 1, "A")
	require.NoError(t, err)

	_, err = a.Allocate(ctx, Row{Index: 2, ExternalID: "A-018"}, 1, "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAllocator_Generated_SeedsFromCategoryCount(t *testing.T) {
	ctx := context.Background()
	books := newMockBookRepo()
	seedBook(books, "A-001", "Physics", 1, models.StatusAvailable)
	seedBook(books, "A-002", "Chemistry", 1, models.StatusAvailable)
	a := NewAllocator(books, PolicyGenerated)

	id, err := a.Allocate(ctx, Row{Index: 1, Name: "Biology"}, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A-003", id)
}

func TestAllocator_Generated_ZeroPadsSequence(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyGenerated)

	id, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A-001", id)
}

func TestAllocator_Generated_ProbesPastCollisions(t *testing.T) {
	ctx := context.Background()
	books := newMockBookRepo()
	// Count says 2, so the seed candidate is A-003, which is taken.
	seedBook(books, "A-001", "Physics", 1, models.StatusAvailable)
	seedBook(books, "A-003", "Chemistry", 1, models.StatusAvailable)
	a := NewAllocator(books, PolicyGenerated)

	id, err := a.Allocate(ctx, Row{Index: 1, Name: "Biology"}, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A-004", id)
}

func TestAllocator_Generated_AvoidsInRunReservations(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyGenerated)

	first, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.NoError(t, err)
	second, err := a.Allocate(ctx, Row{Index: 2, Name: "Chemistry"}, 1, "A")
	require.NoError(t, err)

	assert.Equal(t, "A-001", first)
	assert.Equal(t, "A-002", second)
}

func TestAllocator_Generated_IndependentSequencesPerCategory(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyGenerated)

	idA, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.NoError(t, err)
	idB, err := a.Allocate(ctx, Row{Index: 2, Name: "Ancient Rome"}, 2, "B")
	require.NoError(t, err)

	assert.Equal(t, "A-001", idA)
	assert.Equal(t, "B-001", idB)
}

func TestAllocator_Generated_BlankLabelUsesSentinel(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(newMockBookRepo(), PolicyGenerated)

	id, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, Unclassified+"-001", id)
}

func TestAllocator_Generated_ExhaustsProbeWindow(t *testing.T) {
	ctx := context.Background()
	books := newMockBookRepo()
	for i := 1; i <= maxProbes+1; i++ {
		seedBook(books, fmt.Sprintf("A-%03d", i), "Taken", 2, models.StatusAvailable)
	}
	a := NewAllocator(books, PolicyGenerated)

	// Category 1 is empty so the seed is A-001, but every candidate in the
	// probe window is already a real book.
	_, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIDExhausted))
}

func TestAllocator_Generated_PropagatesLookupFailure(t *testing.T) {
	ctx := context.Background()
	books := newMockBookRepo()
	books.existsErr = errors.New("connection reset")
	a := NewAllocator(books, PolicyGenerated)

	_, err := a.Allocate(ctx, Row{Index: 1, Name: "Physics"}, 1, "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe book id")
}
