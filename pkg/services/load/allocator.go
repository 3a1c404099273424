package load

import (
	"context"
	"fmt"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// maxProbes bounds the collision scan for one generated identifier. A
// category that dense signals corrupt data, not a full shelf.
const maxProbes = 1000

// Allocator assigns book identifiers for one load run. Under the external
// policy it passes through source IDs; under the generated policy it mints
// {label}-{NNN} IDs, probing past books already in the store and IDs already
// handed out this run. State is run-scoped: build a fresh Allocator per load.
type Allocator struct {
	books  repositories.BookRepository
	policy Policy

	// reserved holds every ID handed out this run, before any row is
	// upserted, so two generated rows in one batch cannot collide.
	reserved map[string]struct{}

	// nextSeq remembers the next candidate sequence per category so later
	// rows resume after the last allocation instead of re-probing from the
	// seed count.
	nextSeq map[int64]int
}

func NewAllocator(books repositories.BookRepository, policy Policy) *Allocator {
	return &Allocator{
		books:    books,
		policy:   policy,
		reserved: make(map[string]struct{}),
		nextSeq:  make(map[int64]int),
	}
}

// Allocate returns the book ID for a row. Errors are row-level: the caller
// skips the row and continues the run.
func (a *Allocator) Allocate(ctx context.Context, row Row, categoryID int64, categoryLabel string) (string, error) {
	if a.policy == PolicyExternalID {
		return a.external(row)
	}
	return a.generate(ctx, categoryID, categoryLabel)
}

func (a *Allocator) external(row Row) (string, error) {
	id := row.ExternalID
	if id == "" {
		return "", fmt.Errorf("%s is required under the external ID policy", RoleBookID)
	}
	if _, taken := a.reserved[id]; taken {
		return "", fmt.Errorf("duplicate %s %q in batch", RoleBookID, id)
	}
	a.reserved[id] = struct{}{}
	return id, nil
}

func (a *Allocator) generate(ctx context.Context, categoryID int64, categoryLabel string) (string, error) {
	if categoryLabel == "" {
		categoryLabel = Unclassified
	}

	seq, ok := a.nextSeq[categoryID]
	if !ok {
		count, err := a.books.CountByCategory(ctx, categoryID)
		if err != nil {
			return "", fmt.Errorf("seed sequence for category %d: %w", categoryID, err)
		}
		seq = count + 1
	}

	for probe := 0; probe < maxProbes; probe++ {
		id := fmt.Sprintf("%s-%03d", categoryLabel, seq)
		seq++

		if _, taken := a.reserved[id]; taken {
			continue
		}
		exists, err := a.books.ExistsID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("probe book id %q: %w", id, err)
		}
		if exists {
			continue
		}

		a.reserved[id] = struct{}{}
		a.nextSeq[categoryID] = seq
		return id, nil
	}

	return "", fmt.Errorf("category %q: %w", categoryLabel, apperrors.ErrIDExhausted)
}
