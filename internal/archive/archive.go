// Package archive packs a compiled artifact tree into a distributable
// tar.gz or tar.xz bundle.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/openruleset/bindery/core/errors"
)

// Format is an archive output format.
type Format string

// Supported formats.
const (
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
)

// DetectFormat picks the archive format from a destination filename.
// Unknown extensions default to tar.gz.
func DetectFormat(path string) Format {
	if strings.HasSuffix(path, ".tar.xz") {
		return FormatTarXz
	}
	return FormatTarGz
}

// Create packs srcDir into an archive at dstPath, choosing compression
// from the destination extension. The baseDir parameter names the
// directory inside the archive; entries are stamped with a single
// timestamp so repeated packs of identical trees stay comparable.
func Create(srcDir, dstPath, baseDir string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return errors.NewIO("mkdir", filepath.Dir(dstPath), err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return errors.NewIO("create", dstPath, err)
	}
	defer outFile.Close()

	var compressed io.WriteCloser
	switch DetectFormat(dstPath) {
	case FormatTarXz:
		compressed, err = xz.NewWriter(outFile)
		if err != nil {
			return errors.Wrap(err, "creating xz writer")
		}
	default:
		compressed = gzip.NewWriter(outFile)
	}
	defer compressed.Close()

	tw := tar.NewWriter(compressed)
	defer tw.Close()

	now := time.Now()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "packing %s", srcDir)
	}

	// Close in order so the tar stream flushes through the compressor
	// before the file handle goes away.
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "closing tar stream")
	}
	if err := compressed.Close(); err != nil {
		return errors.Wrap(err, "closing compressor")
	}
	return nil
}

// CreateFromPath packs srcDir into dstPath, deriving the in-archive base
// directory from the destination filename.
func CreateFromPath(srcDir, dstPath string) error {
	base := filepath.Base(dstPath)
	base = strings.TrimSuffix(base, ".tar.xz")
	base = strings.TrimSuffix(base, ".tar.gz")
	return Create(srcDir, dstPath, base)
}
