package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	perr "codecorpus/internal/platform/errors"
)

const jsonContentType = "application/json"

// Reader opens the artifact at uri for reading
func (s *Store) Reader(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	if loc.Remote() {
		obj, err := s.objects(loc)
		if err != nil {
			return nil, err
		}
		return obj.Get(ctx, loc.Bucket, loc.Key)
	}
	f, err := os.Open(loc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "open %s", loc.Path), "uri")
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "open %s", loc.Path)
	}
	return f, nil
}

// ReadJSON decodes the JSON document at uri into v
func (s *Store) ReadJSON(ctx context.Context, uri string, v any) error {
	rc, err := s.Reader(ctx, uri)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", uri)
	}
	return nil
}

// WriteJSON encodes v as UTF-8 JSON with two-space indent and no HTML escaping
// local writes are atomic and create missing parent directories
func (s *Store) WriteJSON(ctx context.Context, uri string, v any) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s", uri)
	}
	return s.WriteBytes(ctx, uri, buf.Bytes(), jsonContentType)
}

// EncodeJSON writes v the way every pipeline artifact is written
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteBytes stores b at uri
func (s *Store) WriteBytes(ctx context.Context, uri string, b []byte, contentType string) error {
	loc, err := Parse(uri)
	if err != nil {
		return err
	}
	if loc.Remote() {
		obj, err := s.objects(loc)
		if err != nil {
			return err
		}
		return obj.Put(ctx, loc.Bucket, loc.Key, bytes.NewReader(b), int64(len(b)), contentType)
	}
	return writeFileAtomic(loc.Path, b)
}

// UploadFile copies a local file to uri
func (s *Store) UploadFile(ctx context.Context, localPath, uri string) error {
	loc, err := Parse(uri)
	if err != nil {
		return err
	}
	if !loc.Remote() {
		b, err := os.ReadFile(localPath)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "read %s", localPath)
		}
		return writeFileAtomic(loc.Path, b)
	}
	obj, err := s.objects(loc)
	if err != nil {
		return err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "open %s", localPath)
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "stat %s", localPath)
	}
	return obj.Put(ctx, loc.Bucket, loc.Key, f, fi.Size(), "application/octet-stream")
}

// UploadDir copies every regular file under dir to uri, keeping relative paths
// returns the number of files copied
func (s *Store) UploadDir(ctx context.Context, dir, uri string) (int, error) {
	base, err := Parse(uri)
	if err != nil {
		return 0, err
	}
	n := 0
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if err := s.UploadFile(ctx, p, base.Join(filepath.ToSlash(rel)).String()); err != nil {
			return err
		}
		n++
		s.Log.Debug().Str("file", rel).Str("dest", base.String()).Msg("uploaded")
		return nil
	})
	if err != nil {
		if _, ok := perr.As(err); ok {
			return n, err
		}
		return n, perr.Wrapf(err, perr.ErrorCodeIO, "upload %s", dir)
	}
	return n, nil
}

// Exists reports whether a local path exists; remote locations are not checked
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// writeFileAtomic writes through a temp file in the destination dir then renames it
func writeFileAtomic(p string, b []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "mkdir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.part")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create temp for %s", p)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeIO, "chmod %s", p)
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeIO, "write %s", p)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "close %s", p)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "rename %s", p)
	}
	return nil
}
