package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/franela/goblin"
)

func TestRecycleBin(t *testing.T) {
	g := Goblin(t)
	fs, rfs := NewFs()
	bin := fs.RecycleBin()

	g.Describe("NewRecycleBin", func() {
		g.It("returns an error if the folder does not exist", func() {
			_, err := NewRecycleBin(rfs.path("missing"), fs.Driver())
			g.Assert(IsErrorCode(err, ErrCodeInvalidArgument)).IsTrue()
		})

		g.It("returns an error if the folder is a file", func() {
			p := rfs.CreateFile("file", "")

			_, err := NewRecycleBin(p, fs.Driver())
			g.Assert(IsErrorCode(err, ErrCodeInvalidArgument)).IsTrue()
		})

		g.It("uses a unique prefix for every instance", func() {
			a, err := NewRecycleBin(rfs.bin, fs.Driver())
			g.Assert(err).IsNil()
			b, err := NewRecycleBin(rfs.bin, fs.Driver())
			g.Assert(err).IsNil()

			g.Assert(a.stagedPath(1) == b.stagedPath(1)).IsFalse()
			g.Assert(filepath.Dir(a.stagedPath(1))).Equal(rfs.bin)
		})

		g.AfterEach(func() {
			rfs.reset()
		})
	})

	g.Describe("Drop", func() {
		g.It("moves the file into the staging folder", func() {
			p := rfs.CreateFile("test.txt", "hello")

			id, err := bin.Drop(p)
			g.Assert(err).IsNil()
			g.Assert(rfs.Exists("test.txt")).IsFalse()
			g.Assert(rfs.BinEntries()).Equal(1)

			orig, ok := bin.Staged(id)
			g.Assert(ok).IsTrue()
			g.Assert(orig).Equal(p)
		})

		g.It("hands out increasing ids", func() {
			a, err := bin.Drop(rfs.CreateFile("a.txt", "a"))
			g.Assert(err).IsNil()
			b, err := bin.Drop(rfs.CreateFile("b.txt", "b"))
			g.Assert(err).IsNil()

			g.Assert(b > a).IsTrue()
		})

		g.It("returns an error for a missing path", func() {
			n := bin.Len()
			_, err := bin.Drop(rfs.path("missing.txt"))
			g.Assert(IsErrorCode(err, ErrCodeNotFound)).IsTrue()
			g.Assert(bin.Len()).Equal(n)
		})

		g.It("stages a link without touching its target", func() {
			rfs.CreateDir("target")
			p := rfs.CreateLink("link", rfs.path("target"))

			_, err := bin.Drop(p)
			g.Assert(err).IsNil()
			g.Assert(rfs.Exists("link")).IsFalse()
			g.Assert(rfs.Exists("target")).IsTrue()
		})

		g.AfterEach(func() {
			g.Assert(bin.Purge()).IsNil()
			rfs.reset()
		})
	})

	g.Describe("Restore", func() {
		g.It("puts the entry back and invalidates the id", func() {
			p := rfs.CreateFile("test.txt", "hello")

			id, err := bin.Drop(p)
			g.Assert(err).IsNil()
			g.Assert(bin.Restore(id)).IsNil()
			g.Assert(rfs.Read("test.txt")).Equal("hello")
			g.Assert(bin.Len()).Equal(0)

			err = bin.Restore(id)
			g.Assert(IsErrorCode(err, ErrCodeNotFound)).IsTrue()
		})

		g.It("restores a directory with its contents", func() {
			rfs.CreateFile("foo/bar/baz.txt", "nested")

			id, err := bin.Drop(rfs.path("foo"))
			g.Assert(err).IsNil()
			g.Assert(rfs.Exists("foo")).IsFalse()

			g.Assert(bin.Restore(id)).IsNil()
			g.Assert(rfs.Read("foo/bar/baz.txt")).Equal("nested")
		})

		g.It("keeps the id when the original location is occupied", func() {
			p := rfs.CreateFile("test.txt", "hello")

			id, err := bin.Drop(p)
			g.Assert(err).IsNil()
			rfs.CreateFile("test.txt", "squatter")

			err = bin.Restore(id)
			g.Assert(IsErrorCode(err, ErrCodeAlreadyExists)).IsTrue()
			g.Assert(rfs.Read("test.txt")).Equal("squatter")

			g.Assert(os.Remove(p)).IsNil()
			g.Assert(bin.Restore(id)).IsNil()
			g.Assert(rfs.Read("test.txt")).Equal("hello")
		})

		g.It("returns an error for an unknown id", func() {
			err := bin.Restore(9999)
			g.Assert(IsErrorCode(err, ErrCodeNotFound)).IsTrue()
		})

		g.AfterEach(func() {
			g.Assert(bin.Purge()).IsNil()
			rfs.reset()
		})
	})

	g.Describe("Resource", func() {
		g.It("opens the staged entry", func() {
			id, err := bin.Drop(rfs.CreateFile("test.txt", "hello"))
			g.Assert(err).IsNil()

			f, err := bin.Resource(id, os.O_RDONLY)
			g.Assert(err).IsNil()
			defer f.Close()

			b, err := io.ReadAll(f)
			g.Assert(err).IsNil()
			g.Assert(string(b)).Equal("hello")
		})

		g.It("returns an error for an unknown id", func() {
			_, err := bin.Resource(9999, os.O_RDONLY)
			g.Assert(IsErrorCode(err, ErrCodeNotFound)).IsTrue()
		})

		g.AfterEach(func() {
			g.Assert(bin.Purge()).IsNil()
			rfs.reset()
		})
	})

	g.Describe("Release", func() {
		g.It("removes only the released entry", func() {
			a, _ := bin.Drop(rfs.CreateFile("a.txt", "a"))
			b, _ := bin.Drop(rfs.CreateFile("b.txt", "b"))

			g.Assert(bin.Release(a)).IsNil()
			g.Assert(bin.Len()).Equal(1)
			g.Assert(rfs.BinEntries()).Equal(1)

			_, ok := bin.Staged(b)
			g.Assert(ok).IsTrue()
			g.Assert(IsErrorCode(bin.Restore(a), ErrCodeNotFound)).IsTrue()
		})

		g.AfterEach(func() {
			g.Assert(bin.Purge()).IsNil()
			rfs.reset()
		})
	})

	g.Describe("Purge", func() {
		g.It("removes every staged entry", func() {
			rfs.CreateFile("foo/bar.txt", "bar")
			rfs.CreateDir("target")

			_, err := bin.Drop(rfs.CreateFile("test.txt", "hello"))
			g.Assert(err).IsNil()
			_, err = bin.Drop(rfs.path("foo"))
			g.Assert(err).IsNil()
			_, err = bin.Drop(rfs.CreateLink("link", rfs.path("target")))
			g.Assert(err).IsNil()

			g.Assert(bin.Purge()).IsNil()
			g.Assert(bin.Len()).Equal(0)
			g.Assert(rfs.BinEntries()).Equal(0)
			g.Assert(rfs.Exists("target")).IsTrue()
		})

		g.It("is a no-op for an empty bin", func() {
			g.Assert(bin.Purge()).IsNil()
		})

		g.It("keeps removing entries after one fails", func() {
			rfs.CreateDir("target")
			rb, err := NewRecycleBin(rfs.bin, &failingDriver{Driver: fs.Driver(), links: true})
			g.Assert(err).IsNil()

			_, err = rb.Drop(rfs.CreateFile("a.txt", "a"))
			g.Assert(err).IsNil()
			_, err = rb.Drop(rfs.CreateLink("link", rfs.path("target")))
			g.Assert(err).IsNil()
			_, err = rb.Drop(rfs.CreateFile("b.txt", "b"))
			g.Assert(err).IsNil()

			err = rb.Purge()
			g.Assert(IsErrorCode(err, ErrCodePrimitive)).IsTrue()
			g.Assert(rb.Len()).Equal(0)
			// Only the link could not be removed.
			g.Assert(rfs.BinEntries()).Equal(1)
			g.Assert(rfs.Exists("target")).IsTrue()
		})

		g.AfterEach(func() {
			rfs.reset()
		})
	})
}
