package scpath

import "path/filepath"

// String returns the path as a string
func (sp StorePath) String() string {
	return string(sp)
}

// Join joins path elements to the store path
func (sp StorePath) Join(elem ...string) AbsolutePath {
	return AbsolutePath(sp).Join(elem...)
}

// ObjectsPath returns the path to the objects directory
func (sp StorePath) ObjectsPath() AbsolutePath {
	return sp.Join(ObjectsDir)
}

// RefsPath returns the path to the refs directory
func (sp StorePath) RefsPath() AbsolutePath {
	return sp.Join(RefsDir)
}

// HeadPath returns the path to the HEAD file
func (sp StorePath) HeadPath() AbsolutePath {
	return sp.Join(HeadFile)
}

// PackedRefsPath returns the path to the packed-refs file
func (sp StorePath) PackedRefsPath() AbsolutePath {
	return sp.Join(PackedRefsFile)
}

// RefFilePath maps a slash separated reference name to its loose file.
func (sp StorePath) RefFilePath(name string) AbsolutePath {
	return sp.Join(filepath.FromSlash(name))
}

// ObjectFilePath returns the path to an object file given its hash.
// Example: hash "abcdef..." returns "<store>/objects/ab/cdef..."
func (sp StorePath) ObjectFilePath(hash string) AbsolutePath {
	if len(hash) != 40 {
		return ""
	}
	return sp.ObjectsPath().Join(hash[:2], hash[2:])
}
