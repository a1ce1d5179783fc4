package bundle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	bytesPerMB = 1024 * 1024
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Zip writes the archive for the bundle into dir and returns its path. The
// archive holds metadata.json and the source tree under its leaf directory
// name. A partial archive is removed on error.
func (b Bundle) Zip(ctx context.Context, dir string) (string, error) {
	dest := filepath.Join(dir, b.ArchiveName())
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}

	// Write the archive, then close the file
	err = b.writeZip(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", err
	}

	// Return success
	return dest, nil
}

// Unzip extracts an archive into outputDir and returns the metadata it
// carries. The documentation tree is at outputDir/metadata.SourcePath.
func Unzip(archive, outputDir string) (schema.Metadata, error) {
	var meta schema.Metadata

	r, err := zip.OpenReader(archive)
	if err != nil {
		return meta, err
	}
	defer r.Close()

	var found bool
	for _, file := range r.File {
		if !filepath.IsLocal(file.Name) {
			return meta, schema.ErrEncoding.Withf("archive entry %q is outside the output directory", file.Name)
		}
		if file.Name == schema.MetadataFileName {
			if err := readMetadata(file, &meta); err != nil {
				return meta, err
			}
			found = true
			continue
		}
		if err := extract(file, filepath.Join(outputDir, filepath.FromSlash(file.Name))); err != nil {
			return meta, err
		}
	}
	if !found {
		return meta, schema.ErrEncoding.Withf("archive %q has no %s", filepath.Base(archive), schema.MetadataFileName)
	}

	// Return success
	return meta, nil
}

// Measure returns the number of regular files under root and their total
// size in megabytes, rounded up
func Measure(root string) (int, int, error) {
	var count int
	var size int64
	if err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	}); err != nil {
		return 0, 0, err
	}
	return count, int((size + bytesPerMB - 1) / bytesPerMB), nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (b Bundle) writeZip(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	// Metadata first
	meta, err := zw.Create(schema.MetadataFileName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(meta)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.Metadata()); err != nil {
		return schema.ErrEncoding.Wrap(err)
	}

	// Source tree, rooted at its leaf directory
	root := filepath.Clean(b.SourcePath)
	leaf := filepath.Base(root)
	if err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := path.Join(leaf, filepath.ToSlash(rel))
		switch {
		case d.IsDir():
			_, err := zw.Create(name + "/")
			return err
		case d.Type().IsRegular():
			return addFile(zw, p, name)
		default:
			return nil
		}
	}); err != nil {
		return err
	}

	// Flush the central directory
	return zw.Close()
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func readMetadata(file *zip.File, meta *schema.Metadata) error {
	r, err := file.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(meta); err != nil {
		return schema.ErrEncoding.Wrap(err)
	}
	return nil
}

func extract(file *zip.File, dest string) error {
	if file.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	r, err := file.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}
