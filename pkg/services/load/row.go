// Package load implements the bulk inventory load pipeline: extraction from
// tabular sources, row validation, dimension resolution, book identity
// allocation, and the orchestrated upsert into the store.
package load

// Row is one extracted source row with cells mapped to canonical fields and
// whitespace trimmed. Index is the 1-based position in the source, not
// counting the header.
type Row struct {
	Index         int
	ExternalID    string `validate:"omitempty,max=50"`
	Name          string `validate:"required,max=255"`
	CategoryName  string `validate:"omitempty,max=100"`
	CategoryLabel string `validate:"omitempty,max=50"`
	LocationName  string `validate:"omitempty,max=100"`
}

// Policy selects how book identifiers are assigned during a load.
type Policy string

const (
	// PolicyExternalID trusts the identifier carried in the source row.
	// Loads under this policy are idempotent per book_id.
	PolicyExternalID Policy = "external"

	// PolicyGenerated assigns {category_label}-{NNN} identifiers,
	// probing past existing books and in-run reservations.
	PolicyGenerated Policy = "generated"
)

// IsValid reports whether the policy is one of the known values.
func (p Policy) IsValid() bool {
	return p == PolicyExternalID || p == PolicyGenerated
}
