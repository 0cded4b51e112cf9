// Package archive provides the compression/decompression helpers every
// file-based Source and Sink shares: transparent gzip, and tar.gz
// bundling of a Sink's multiple output files into one artifact (spec
// §4.4, §6.1).
package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/biolink/kgx/config"
	"github.com/biolink/kgx/errors"
)

// OpenReader opens path for reading, transparently decompressing it
// according to compression. tar.gz inputs are read from their first
// member; member names are not checked and any further members are not
// read.
func OpenReader(path string, compression config.Compression) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "archive", "OpenReader", "open "+path)
	}

	switch compression {
	case config.CompressionNone:
		return f, nil
	case config.CompressionGZ:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.WrapInvalid(err, "archive", "OpenReader", "gzip header")
		}
		return &readCloserPair{Reader: gz, inner: f}, nil
	case config.CompressionTarGZ:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.WrapInvalid(err, "archive", "OpenReader", "gzip header")
		}
		tr := tar.NewReader(gz)
		if _, err := tr.Next(); err != nil {
			gz.Close()
			f.Close()
			return nil, errors.WrapInvalid(err, "archive", "OpenReader", "tar header")
		}
		return &readCloserPair{Reader: tr, inner: f, extra: gz}, nil
	default:
		f.Close()
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "archive", "OpenReader",
			"unknown compression: "+string(compression))
	}
}

type readCloserPair struct {
	io.Reader
	inner io.Closer
	extra io.Closer
}

func (p *readCloserPair) Close() error {
	if p.extra != nil {
		p.extra.Close()
	}
	return p.inner.Close()
}

// NewWriter opens path for writing, transparently compressing it
// according to compression. tar.gz output is written as a single-member
// archive named after filepath.Base(path) with the .tar.gz suffix
// stripped.
func NewWriter(path string, compression config.Compression) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "archive", "NewWriter", "create "+path)
	}

	switch compression {
	case config.CompressionNone:
		return f, nil
	case config.CompressionGZ:
		gz := gzip.NewWriter(f)
		return &writeCloserChain{Writer: gz, closers: []io.Closer{gz, f}}, nil
	case config.CompressionTarGZ:
		gz := gzip.NewWriter(f)
		tw := tar.NewWriter(gz)
		member := trimArchiveSuffix(filepath.Base(path))
		return &tarMemberWriter{tw: tw, name: member, closers: []io.Closer{tw, gz, f}}, nil
	default:
		f.Close()
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "archive", "NewWriter",
			"unknown compression: "+string(compression))
	}
}

func trimArchiveSuffix(name string) string {
	const suffix = ".tar.gz"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}

type writeCloserChain struct {
	io.Writer
	closers []io.Closer
}

func (c *writeCloserChain) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// tarMemberWriter buffers writes so it can emit a correct tar header once
// the member's final size is known at Close.
type tarMemberWriter struct {
	tw      *tar.Writer
	name    string
	buf     []byte
	closers []io.Closer
}

func (t *tarMemberWriter) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	return len(p), nil
}

func (t *tarMemberWriter) Close() error {
	hdr := &tar.Header{Name: t.name, Size: int64(len(t.buf)), Mode: 0o644}
	if err := t.tw.WriteHeader(hdr); err != nil {
		return errors.WrapTransient(err, "archive", "tarMemberWriter.Close", "write tar header")
	}
	if _, err := t.tw.Write(t.buf); err != nil {
		return errors.WrapTransient(err, "archive", "tarMemberWriter.Close", "write tar body")
	}
	var firstErr error
	for _, closer := range t.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Bundle packages multiple already-written files into a single tar.gz at
// outPath, for a caller that wants a node file and an edge file combined
// into one artifact. No Sink calls it on its own.
func Bundle(outPath string, files ...string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return errors.WrapFatal(err, "archive", "Bundle", "create "+outPath)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, path := range files {
		if err := addFile(tw, path); err != nil {
			return err
		}
	}
	return nil
}

func addFile(tw *tar.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapTransient(err, "archive", "addFile", "read "+path)
	}
	hdr := &tar.Header{Name: filepath.Base(path), Size: int64(len(data)), Mode: 0o644}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.WrapTransient(err, "archive", "addFile", "write header for "+path)
	}
	_, err = tw.Write(data)
	if err != nil {
		return errors.WrapTransient(err, "archive", "addFile", "write body for "+path)
	}
	return nil
}
