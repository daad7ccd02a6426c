package objects

import (
	"fmt"
	"strconv"
)

// FileMode is the mode recorded on a tree entry. Git keeps the entry kind in
// the upper bits and unix permissions in the lower nine.
type FileMode uint32

const (
	FileModeTypeMask FileMode = 0o170000
	FileModePermMask FileMode = 0o000777

	FileModeTypeRegular FileMode = 0o100000
	FileModeTypeSymlink FileMode = 0o120000
	FileModeTypeGitlink FileMode = 0o160000
	FileModeTypeDir     FileMode = 0o040000

	FileModeRegular    FileMode = 0o100644 // Regular file, rw-r--r--
	FileModeExecutable FileMode = 0o100755 // Executable file, rwxr-xr-x
	FileModeSymlink    FileMode = 0o120000 // Symbolic link
	FileModeGitlink    FileMode = 0o160000 // Gitlink (submodule commit in another repository)
	FileModeDirectory  FileMode = 0o040000 // Subtree
)

// Type returns the file type portion of the mode.
func (m FileMode) Type() FileMode {
	return m & FileModeTypeMask
}

// IsRegular returns true for regular and executable files.
func (m FileMode) IsRegular() bool {
	return m.Type() == FileModeTypeRegular
}

// IsSymlink returns true if this is a symbolic link.
func (m FileMode) IsSymlink() bool {
	return m.Type() == FileModeTypeSymlink
}

// IsGitlink returns true for submodule entries. Their hash names a commit in
// a different repository.
func (m FileMode) IsGitlink() bool {
	return m.Type() == FileModeTypeGitlink
}

// IsDirectory returns true if the entry is a subtree.
func (m FileMode) IsDirectory() bool {
	return m.Type() == FileModeTypeDir
}

// ObjectType returns the kind of object an entry with this mode points to.
// Gitlinks point to commits outside this repository.
func (m FileMode) ObjectType() ObjectType {
	switch {
	case m.IsDirectory():
		return TreeType
	case m.IsGitlink():
		return CommitType
	default:
		return BlobType
	}
}

// String returns a human-readable representation of the file mode.
func (m FileMode) String() string {
	switch m.Type() {
	case FileModeTypeRegular:
		return fmt.Sprintf("regular(%o)", m&FileModePermMask)
	case FileModeTypeSymlink:
		return "symlink"
	case FileModeTypeGitlink:
		return "gitlink"
	case FileModeTypeDir:
		return "directory"
	default:
		return fmt.Sprintf("unknown(%o)", uint32(m))
	}
}

// ToOctalString returns the mode as written in tree payloads: "100644",
// "40000" (git drops the leading zero for directories).
func (m FileMode) ToOctalString() string {
	return strconv.FormatUint(uint64(m), 8)
}

// FromOctalString parses a tree entry mode such as "100644" or "40000".
func FromOctalString(s string) (FileMode, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil || s == "" {
		return 0, fmt.Errorf("invalid mode string %q", s)
	}
	return FileMode(mode), nil
}
