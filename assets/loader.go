// Package assets loads VRAM asset blobs (patterns, sprites, color tables)
// from plain files or from inside archives (ZIP, 7z, gzip, tar.gz, RAR).
package assets

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/user-none/colecohal/logger"
)

const logTag = "assets"

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// MaxSize is the largest asset accepted, all of VRAM
const MaxSize = 16 * 1024

// ErrNoAssetFile is returned when an archive holds no asset file
var ErrNoAssetFile = errors.New("no asset file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when the asset does not fit in VRAM
var ErrFileTooLarge = errors.New("asset larger than VRAM")

// assetExts are the extensions taken as asset files
var assetExts = map[string]bool{
	".bin": true,
	".pat": true,
	".chr": true,
	".spr": true,
	".col": true,
	".nam": true,
}

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Load reads an asset from path, extracting the first asset file when path is
// an archive. It returns the data and the asset's file name.
func Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	var (
		data []byte
		name string
	)
	switch format {
	case formatRaw:
		data, err = limitedRead(f)
		if err != nil {
			err = fmt.Errorf("failed to read asset: %w", err)
		}
		name = filepath.Base(path)
	case formatZIP:
		data, name, err = extractFromZIP(path)
	case format7z:
		data, name, err = extractFrom7z(path)
	case formatGzip:
		data, name, err = extractFromGzip(f, path)
	case formatRAR:
		data, name, err = extractFromRAR(path)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, "", err
	}

	logger.Logf(logger.Allow, logTag, "loaded %s (%d bytes) from %s", name, len(data), filepath.Base(path))
	return data, name, nil
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
		return formatZIP
	}
	if bytes.HasPrefix(header, magicRAR) {
		return formatRAR
	}
	if bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}
	if assetExts[ext] {
		return formatRaw
	}
	return formatUnknown
}

// isAssetFile checks the extension of an archive entry, case insensitive
func isAssetFile(name string) bool {
	return assetExts[strings.ToLower(filepath.Ext(name))]
}

// limitedRead reads from r up to MaxSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// extractFromZIP extracts the first asset file from a ZIP archive
func extractFromZIP(path string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isAssetFile(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return data, filepath.Base(f.Name), nil
	}

	return nil, "", ErrNoAssetFile
}

// extractFromGzip decompresses a gzip file. A .tar.gz or .tgz is searched for
// the first asset file; anything else is the asset itself.
func extractFromGzip(r io.Reader, path string) ([]byte, string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractFromTar(gz)
	}

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	data, err := limitedRead(gz)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress: %w", err)
	}
	return data, filepath.Base(name), nil
}

func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isAssetFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoAssetFile
}
