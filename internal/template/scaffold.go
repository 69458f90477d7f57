package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDestinationExists is returned when scaffolding into a non-empty directory.
var ErrDestinationExists = errors.New("destination already exists and is not empty")

// Scaffold copies the fetched template at src into dst and names the
// project. The cache sidecar and any .git directory are left behind.
func Scaffold(src, dst, projectName string) error {
	entries, err := os.ReadDir(dst)
	switch {
	case err == nil && len(entries) > 0:
		return fmt.Errorf("scaffold %s: %w", dst, ErrDestinationExists)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("scaffold %s: %w", dst, err)
	}

	skip := func(rel string, d fs.DirEntry) bool {
		return rel == MetaFile || (d.IsDir() && d.Name() == ".git")
	}
	if err := copyTree(src, dst, skip); err != nil {
		return fmt.Errorf("scaffold %s: %w", dst, err)
	}
	if err := renamePackage(filepath.Join(dst, "package.json"), projectName); err != nil {
		return fmt.Errorf("scaffold %s: %w", dst, err)
	}
	return nil
}

// renamePackage rewrites the top-level name of package.json in place. The
// rest of the file keeps its formatting and key order.
func renamePackage(path, name string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || name == "" {
		return nil
	}
	if err != nil {
		return err
	}
	start, end, err := topLevelName(data)
	if err != nil {
		return fmt.Errorf("parse package.json: %w", err)
	}
	if start < 0 {
		return nil
	}
	quoted, _ := json.Marshal(name)
	out := make([]byte, 0, len(data)+len(quoted))
	out = append(out, data[:start]...)
	out = append(out, quoted...)
	out = append(out, data[end:]...)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}

// topLevelName returns the byte range of the string value of the root
// object's "name" key, or -1 when there is none.
func topLevelName(data []byte) (start, end int, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return -1, -1, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return -1, -1, errors.New("top level is not an object")
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return -1, -1, err
		}
		if key == "name" {
			i := int(dec.InputOffset())
			for i < len(data) && (data[i] == ':' || isJSONSpace(data[i])) {
				i++
			}
			if i < len(data) && data[i] == '"' {
				if _, err := dec.Token(); err != nil {
					return -1, -1, err
				}
				return i, int(dec.InputOffset()), nil
			}
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return -1, -1, err
		}
	}
	return -1, -1, nil
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// copyTree copies regular files and directories from src into dst. skip,
// when set, is called with slash-separated paths relative to src.
func copyTree(src, dst string, skip func(rel string, d fs.DirEntry) bool) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel != "." && skip != nil && skip(filepath.ToSlash(rel), d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode().IsRegular():
			return copyFile(p, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
