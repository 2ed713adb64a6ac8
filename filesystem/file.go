package filesystem

import (
	"io"
	"os"

	"emperror.dev/errors"
	"github.com/gabriel-vasile/mimetype"
)

// File is a handle to a regular file.
type File struct {
	handle
}

func (f *File) IsFile() bool { return true }
func (f *File) IsDir() bool  { return false }
func (f *File) IsLink() bool { return false }

func (f *File) Delete() error {
	return deleteItem(f)
}

func (f *File) Copy(target Item, forced bool) (Item, error) {
	return copyItem(f, target, forced)
}

func (f *File) Move(target Item, forced bool) (Item, error) {
	return moveItem(f, target, forced)
}

func (f *File) remove() error {
	if err := os.Remove(f.path); err != nil {
		return wrapError(ErrCodePrimitive, "delete", f.path, "", err)
	}
	return nil
}

// copyTo copies the contents of the file to dst, which must not exist yet.
// The copy keeps the permission bits of the source.
func (f *File) copyTo(dst string) error {
	return copyFile(f.path, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, st.Mode().Perm())
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Close())
}

// Read returns the full contents of the file.
func (f *File) Read() ([]byte, error) {
	p, err := f.Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, wrapError(ErrCodePrimitive, "read", p, "", err)
	}
	return b, nil
}

// Size returns the size of the file in bytes.
func (f *File) Size() (int64, error) {
	p, err := f.Path()
	if err != nil {
		return 0, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return 0, wrapError(ErrCodePrimitive, "size", p, "", err)
	}
	return st.Size(), nil
}

// Mimetype returns the detected mimetype of the file based on its contents.
func (f *File) Mimetype() (string, error) {
	p, err := f.Path()
	if err != nil {
		return "", err
	}
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return "", wrapError(ErrCodePrimitive, "mimetype", p, "", err)
	}
	return m.String(), nil
}

// Write replaces the contents of the file with everything read from r and
// returns the number of bytes written.
//
// Within a transaction the original file is staged in the recycle bin and the
// data is written to a fresh file in its place, so rolling back puts the
// original contents back.
func (f *File) Write(r io.Reader) (int64, error) {
	return f.write("write", r, os.O_WRONLY|os.O_TRUNC)
}

// Append adds everything read from r to the end of the file. Within a
// transaction this behaves like Write, except that the fresh file is first
// filled with the original contents.
func (f *File) Append(r io.Reader) (int64, error) {
	return f.write("append", r, os.O_WRONLY|os.O_APPEND)
}

func (f *File) write(op string, r io.Reader, flag int) (int64, error) {
	p, err := f.Path()
	if err != nil {
		return 0, err
	}
	if err := f.fs.guard(op, p); err != nil {
		return 0, err
	}

	var id int64
	staged := f.fs.tx.In()
	if staged {
		id, err = f.replace(op, p, flag&os.O_APPEND != 0)
		if err != nil {
			return 0, err
		}
	}

	fail := func(err error) (int64, error) {
		err = wrapError(ErrCodePrimitive, op, p, "", err)
		if staged {
			_ = os.Remove(p)
		}
		return 0, f.fs.unstage(err, id, staged)
	}

	out, err := os.OpenFile(p, flag, 0)
	if err != nil {
		return fail(err)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(err)
	}

	if staged {
		f.fs.tx.Log(RestoreStaged{ID: id})
		f.fs.tx.Log(DeleteHandle{Item: &File{handle: handle{fs: f.fs, path: p}}})
	}
	return n, nil
}

// replace stages the file at p and creates an empty file with the same
// permissions in its place. When rehydrate is true the contents of the staged
// file are copied into the new one.
func (f *File) replace(op string, p string, rehydrate bool) (int64, error) {
	st, err := os.Stat(p)
	if err != nil {
		return 0, wrapError(ErrCodePrimitive, op, p, "", err)
	}
	id, err := f.fs.bin.Drop(p)
	if err != nil {
		return 0, errors.WrapIf(err, "filesystem: "+op+": failed to stage file")
	}

	fail := func(err error) (int64, error) {
		_ = os.Remove(p)
		return 0, f.fs.unstage(wrapError(ErrCodePrimitive, op, p, "", err), id, true)
	}
	if err := f.fs.driver.CreateEmptyFile(p); err != nil {
		return 0, f.fs.unstage(wrapError(ErrCodePrimitive, op, p, "", err), id, true)
	}
	if err := os.Chmod(p, st.Mode().Perm()); err != nil {
		return fail(err)
	}
	if rehydrate && st.Size() > 0 {
		if err := f.rehydrate(id, p); err != nil {
			return fail(err)
		}
	}
	return id, nil
}

func (f *File) rehydrate(id int64, p string) error {
	in, err := f.fs.bin.Resource(id, os.O_RDONLY)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(p, os.O_WRONLY, 0)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(out.Close())
}
