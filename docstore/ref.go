package docstore

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// REFERENCES
// =============================================================================

// Ref addresses a document without fetching it. It is a lookup key only.
type Ref struct {
	Collection string
	ID         string
}

// NewRef builds a reference.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

func (r Ref) String() string {
	return r.Collection + "/" + r.ID
}

// =============================================================================
// COMPOSITE IDS
// =============================================================================

const compositeSep = "_"

var (
	compositeEscaper   = strings.NewReplacer("%", "%25", "_", "%5F")
	compositeUnescaper = strings.NewReplacer("%25", "%", "%5F", "_")
)

// CompositeID derives a deterministic id from natural keys. Each part has
// '%' and '_' escaped before joining with '_', so the separator never occurs
// inside a part and distinct inputs never collide. Parts without those
// characters produce the plain "a_b" form.
func CompositeID(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = compositeEscaper.Replace(p)
	}
	return strings.Join(escaped, compositeSep)
}

// SplitCompositeID reverses CompositeID.
func SplitCompositeID(id string) []string {
	parts := strings.Split(id, compositeSep)
	for i, p := range parts {
		parts[i] = compositeUnescaper.Replace(p)
	}
	return parts
}

// =============================================================================
// ID GENERATION
// =============================================================================

// IDGenerator allocates document ids for Create.
type IDGenerator func() string

// UUIDGenerator returns random (v4) UUID strings.
func UUIDGenerator() string {
	return uuid.NewString()
}
