package scanner

// Location mirrors the `loc` object of a clang AST JSON node. Every field
// is optional; Col is always populated whenever a Location was present at
// all (per the input contract, spec.md §3).
type Location struct {
	File         string
	Line         string
	PresumedFile string
	PresumedLine string
	Col          string
}

// Empty reports whether no field of the location was ever set.
func (l Location) Empty() bool {
	return l == Location{}
}

// AstNode is a transient, per-node projection of a single AST JSON object.
// It is owned by the Scanner and reset between nodes; callers that need a
// field beyond the lifetime of their NodeHandler call must copy it.
type AstNode struct {
	ID                  string
	Kind                string
	PreviousDecl        string
	MangledName         string
	IsImplicit          bool
	IsUsed              bool
	IsExplicitlyDeleted bool
	Location            Location
	SecondaryLocation   Location
}

func (n *AstNode) reset() {
	*n = AstNode{}
}
