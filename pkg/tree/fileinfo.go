package tree

import "path/filepath"

// FileType distinguishes the kind of file a subtree's root was parsed from,
// independent of its serialization Format (a .json file and a .json.erb
// template would both be FileTypeRegular, say).
type FileType uint8

const (
	FileTypeRegular FileType = iota
	FileTypeVirtual          // constructed in memory, not backed by a filesystem path.
)

// Format identifies the textual serialization a subtree's root was parsed
// from or should be serialized to. Parsing and serialization live in
// pkg/format; in this package Format is carried as metadata only.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FileInfo carries provenance for a node that was parsed from (or will be
// serialized to) a file. It is attached to the root of a parsed subtree and
// inherited by descendants lacking a file of their own (§3 invariant 5).
type FileInfo struct {
	AbsolutePath string
	FileType     FileType
	Format       Format
}

// Path returns the path as originally supplied (may be relative).
func (fi *FileInfo) Path() string {
	if fi == nil {
		return ""
	}

	return fi.AbsolutePath
}

// PathAbs returns the absolute path, resolving it if necessary.
func (fi *FileInfo) PathAbs() string {
	if fi == nil {
		return ""
	}

	abs, err := filepath.Abs(fi.AbsolutePath)
	if err != nil {
		return fi.AbsolutePath
	}

	return abs
}

// Dir returns the directory component of the path.
func (fi *FileInfo) Dir() string {
	if fi == nil {
		return ""
	}

	return filepath.Dir(fi.AbsolutePath)
}

// DirAbs returns the absolute directory component of the path.
func (fi *FileInfo) DirAbs() string { return filepath.Dir(fi.PathAbs()) }

// Name returns the file name including extension.
func (fi *FileInfo) Name() string {
	if fi == nil {
		return ""
	}

	return filepath.Base(fi.AbsolutePath)
}

// Stem returns the file name without its extension.
func (fi *FileInfo) Stem() string {
	name := fi.Name()
	ext := filepath.Ext(name)

	return name[:len(name)-len(ext)]
}

// Ext returns the file extension, including the leading dot.
func (fi *FileInfo) Ext() string {
	if fi == nil {
		return ""
	}

	return filepath.Ext(fi.AbsolutePath)
}

// PathComponents splits the path into its directory components.
func (fi *FileInfo) PathComponents() []string {
	if fi == nil {
		return nil
	}

	dir := filepath.Dir(fi.AbsolutePath)
	if dir == "." || dir == "/" {
		return nil
	}

	var parts []string

	for dir != "." && dir != "/" && dir != "" {
		parts = append([]string{filepath.Base(dir)}, parts...)
		dir = filepath.Dir(dir)
	}

	return parts
}
