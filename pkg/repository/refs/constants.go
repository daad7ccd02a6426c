package refs

// Common reference paths
const (
	// RefPrefix is the namespace every transferable reference lives under
	RefPrefix = "refs/"

	// RefHeads is the base path for branch references
	RefHeads RefPath = "refs/heads"

	// RefTags is the base path for tag references
	RefTags RefPath = "refs/tags"

	// RefHEAD is the HEAD reference
	RefHEAD RefPath = "HEAD"

	// DefaultBranch is where HEAD points in a freshly created repository
	DefaultBranch RefPath = "refs/heads/main"
)

const (
	// SymbolicRefPrefix is the prefix for symbolic references
	SymbolicRefPrefix = "ref: "

	// MaxRefDepth is the maximum depth for resolving symbolic references
	MaxRefDepth = 10
)
