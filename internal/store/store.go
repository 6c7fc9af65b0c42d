// Package store reads and writes a directory of section files, one
// <Section>.json array per section.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/records"
)

// Compile-time interface checks.
var (
	_ records.Source = (*Dir)(nil)
	_ records.Sink   = (*Dir)(nil)
)

// Dir is a section directory.
type Dir struct {
	path string
}

// Open returns the section directory at path. A missing directory is a
// MissingInputError.
func Open(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError("section directory", path, err)
		}
		return nil, errors.WrapIO("stat", path, err)
	}
	if !info.IsDir() {
		return nil, &errors.ValidationError{Field: "path", Value: path, Message: "not a directory"}
	}
	return &Dir{path: path}, nil
}

// Create returns the section directory at path, creating it if needed.
func Create(path string) (*Dir, error) {
	if err := os.MkdirAll(path, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", path, err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// File returns the path of a section's file.
func (d *Dir) File(section string) string {
	return filepath.Join(d.path, section+constants.SectionExtension)
}

// Sections lists section names in sorted order.
func (d *Dir) Sections() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, errors.WrapIO("read", d.path, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != constants.SectionExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(name, constants.SectionExtension))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads a section. An absent file is a MissingInputError and an
// unparsable one a ParseError naming the file.
func (d *Dir) Load(section string) ([]records.Record, error) {
	file := d.File(section)
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingInputError("section", file, err)
		}
		return nil, errors.WrapIO("read", file, err)
	}
	recs, err := records.Decode(data)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = file
			return nil, pe
		}
		return nil, errors.WrapParse("json", file, err)
	}
	return recs, nil
}

// LoadAll reads every section.
func (d *Dir) LoadAll() (records.Collection, error) {
	names, err := d.Sections()
	if err != nil {
		return nil, err
	}
	out := make(records.Collection, len(names))
	for _, name := range names {
		recs, err := d.Load(name)
		if err != nil {
			return nil, errors.WrapSection(name, err)
		}
		out[name] = recs
	}
	return out, nil
}

// Save writes a section atomically through a temporary file.
func (d *Dir) Save(section string, recs []records.Record) error {
	return writeFileAtomic(d.File(section), records.Encode(recs))
}

// SaveAll writes every section of c.
func (d *Dir) SaveAll(c records.Collection) error {
	for _, name := range c.Names() {
		if err := d.Save(name, c[name]); err != nil {
			return errors.WrapSection(name, err)
		}
	}
	return nil
}

// Clear removes every section file, leaving other files alone.
func (d *Dir) Clear() error {
	names, err := d.Sections()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(d.File(name)); err != nil && !os.IsNotExist(err) {
			return errors.WrapIO("delete", d.File(name), err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}

// WriteFile writes arbitrary content atomically, for artifacts such as the
// changed-identifier manifest that live beside section directories.
func WriteFile(path string, data []byte) error {
	return writeFileAtomic(path, data)
}
