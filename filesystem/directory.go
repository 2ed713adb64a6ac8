package filesystem

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
)

// Directory is a handle to a directory.
type Directory struct {
	handle
}

func (d *Directory) IsFile() bool { return false }
func (d *Directory) IsDir() bool  { return true }
func (d *Directory) IsLink() bool { return false }

func (d *Directory) Delete() error {
	return deleteItem(d)
}

func (d *Directory) Copy(target Item, forced bool) (Item, error) {
	return copyItem(d, target, forced)
}

func (d *Directory) Move(target Item, forced bool) (Item, error) {
	return moveItem(d, target, forced)
}

// remove deletes the contents of the directory depth-first and then the
// directory itself. Links inside the directory are removed without touching
// what they point at.
func (d *Directory) remove() error {
	it, err := d.Iterator()
	if err != nil {
		return err
	}
	for _, name := range it.names {
		p := filepath.Join(it.dir, name)
		child, err := d.fs.entry(p)
		switch {
		case err == nil:
			err = child.remove()
		case IsErrorCode(err, ErrCodeInvalidArgument):
			// Pipes, sockets and devices have no item kind of their own.
			err = removeEntry(d.fs.driver, p)
		}
		if err != nil {
			return err
		}
	}
	if err := os.Remove(d.path); err != nil {
		return wrapError(ErrCodePrimitive, "delete", d.path, "", err)
	}
	return nil
}

// copyTo recreates the directory at dst and copies every child into it. The
// copy is a single unit, only the new top level directory is journaled.
func (d *Directory) copyTo(dst string) error {
	if err := d.fs.driver.CreateEmptyDirectory(dst); err != nil {
		return err
	}
	it, err := d.Iterator()
	if err != nil {
		return err
	}
	for it.Next() {
		child := it.Item()
		if err := child.copyTo(filepath.Join(dst, child.BaseName())); err != nil {
			return err
		}
	}
	return it.Err()
}

// Iterator returns an iterator over the entries of the directory. The names
// are read up front and sorted, each entry is resolved to an item when the
// iterator reaches it.
func (d *Directory) Iterator() (*Iterator, error) {
	p, err := d.Path()
	if err != nil {
		return nil, err
	}
	names, err := godirwalk.ReadDirnames(p, nil)
	if err != nil {
		return nil, wrapError(ErrCodePrimitive, "iterate", p, "", err)
	}
	sort.Strings(names)
	return &Iterator{fs: d.fs, dir: p, names: names}, nil
}

// Children returns every entry of the directory as an item.
func (d *Directory) Children() ([]Item, error) {
	it, err := d.Iterator()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(it.names))
	for it.Next() {
		items = append(items, it.Item())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Iterator walks the entries of a single directory.
//
//	it, _ := dir.Iterator()
//	for it.Next() {
//		fmt.Println(it.Item().BaseName())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	fs    *Filesystem
	dir   string
	names []string
	pos   int
	cur   Item
	err   error
}

// Next advances to the next entry. It returns false once every entry has
// been visited or an entry could not be resolved.
func (it *Iterator) Next() bool {
	if it.err != nil || it.pos >= len(it.names) {
		it.cur = nil
		return false
	}
	it.cur, it.err = it.fs.entry(filepath.Join(it.dir, it.names[it.pos]))
	it.pos++
	return it.err == nil
}

// Item returns the entry the iterator currently points at.
func (it *Iterator) Item() Item {
	return it.cur
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
