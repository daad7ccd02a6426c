package scpath

const (
	// SourceDir is the storage directory of a native repository
	SourceDir = ".source"

	// GitDir is the storage directory of a git working repository
	GitDir = ".git"

	// ObjectsDir is the name of the objects directory
	ObjectsDir = "objects"

	// RefsDir is the name of the refs directory
	RefsDir = "refs"

	// HeadsDir is the name of the heads directory (branches)
	HeadsDir = "heads"

	// TagsDir is the name of the tags directory
	TagsDir = "tags"

	// HeadFile is the name of the HEAD file
	HeadFile = "HEAD"

	// PackedRefsFile holds references git has folded into a single file
	PackedRefsFile = "packed-refs"

	// LockSuffix is appended to a file name to form its lock file
	LockSuffix = ".lock"
)
