package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// Stdio is the source/destination name that maps to stdin or stdout.
const Stdio = "-"

// Load reads the whole route document into memory and decodes it.
// The source may be a local path, Stdio, or an http(s) URL; a ".zst"
// suffix marks a zstd-compressed payload.
func Load(client *http.Client, source string) (GeoJSONFeatureCollection, error) {
	data, err := readSource(client, source)
	if err != nil {
		return GeoJSONFeatureCollection{}, err
	}

	if isZstd(source) {
		if data, err = decompress(data); err != nil {
			return GeoJSONFeatureCollection{}, fmt.Errorf("decompress %s: %w", source, err)
		}
	}

	var fc GeoJSONFeatureCollection
	if err := unmarshalJSON(data, &fc); err != nil {
		return GeoJSONFeatureCollection{}, fmt.Errorf("parse %s: %w", source, err)
	}

	log.Debug().
		Str("source", source).
		Int("bytes", len(data)).
		Int("features", len(fc.Features)).
		Int("points", fc.PointCountTotal()).
		Msg("Route document loaded")

	return fc, nil
}

// Save serializes the document and writes it to path (or stdout for Stdio).
// Values that JSON cannot represent are written as strings.
// The file is written in place, a failed write may leave it truncated.
func Save(path string, fc GeoJSONFeatureCollection, indent bool) (err error) {
	out := fc
	out.Features = make([]GeoJSONFeature, len(fc.Features))
	for i, f := range fc.Features {
		f.ID = jsonSafe(f.ID)
		f.Properties = safeProperties(f.Properties)
		out.Features[i] = f
	}

	var data []byte
	if indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if isZstd(path) {
		if data, err = compress(data); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	}

	if path == Stdio {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}

	log.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Msg("Route document written")

	return nil
}

func readSource(client *http.Client, source string) ([]byte, error) {
	switch {
	case source == Stdio:
		return io.ReadAll(os.Stdin)

	case isURL(source):
		log.Info().Str("url", source).Msg("Downloading route document...")
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download failed: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)

	default:
		return os.ReadFile(source)
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// isZstd reports whether name (a path or URL) carries the zstd suffix.
func isZstd(name string) bool {
	if isURL(name) {
		if u, err := url.Parse(name); err == nil {
			name = u.Path
		}
	}
	return strings.EqualFold(filepath.Ext(name), ".zst")
}

func decompress(data []byte) ([]byte, error) {
	zr, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return zr.DecodeAll(data, nil)
}

func compress(data []byte) ([]byte, error) {
	zw, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := zw.EncodeAll(data, make([]byte, 0, len(data)/4))
	return out, zw.Close()
}

// unmarshalJSON decodes b into out, translating decoder offsets into
// line/character positions so malformed input can be located.
func unmarshalJSON[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	// Syntax is checked over the whole document before decoding starts, so
	// the offset is absolute. Type errors come from per-member decoding and
	// carry the member path in their message instead.
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, char := decodeOffset(syntaxErr.Offset)
		return fmt.Errorf("line %d, character %d: %w", line, char, err)
	}
	return err
}
