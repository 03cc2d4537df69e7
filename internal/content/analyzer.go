// Package content implements C4: previewing small text files. The
// binary/textual heuristic is grounded on the teacher's
// internal/indexing/binary_detector.go magic-number + null-byte ratio
// check; encoding detection uses golang.org/x/text (BOM sniffing, then
// UTF-8 if the bytes are valid UTF-8, else Windows-1252), the same
// package family Gosayram-go-locate and Yakitrak-obsidian-cli already
// depend on for text/locale handling.
package content

import (
	"bytes"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/filesieve/filesieve/internal/fserr"
	"github.com/filesieve/filesieve/internal/model"
)

const (
	sampleSize  = 8192
	previewRunes = 1000
)

// Analyze reads up to maxSize bytes of path and returns a preview, or
// (nil, nil) if the file is too large or looks non-textual (spec §4.4).
func Analyze(path string, maxSize int64) (*model.ContentPreview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fserr.Wrap(fserr.IO, "stat failed: "+path, err)
	}
	if info.IsDir() {
		return nil, nil
	}
	if info.Size() > maxSize {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fserr.Wrap(fserr.IO, "open failed: "+path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxSize))
	if err != nil {
		return nil, fserr.Wrap(fserr.IO, "read failed: "+path, err)
	}

	sample := raw
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if !looksTextual(sample) {
		return nil, nil
	}

	enc, decoded, err := decode(raw)
	if err != nil {
		return nil, fserr.Wrap(fserr.Encoding, "decode failed: "+path, err)
	}

	return &model.ContentPreview{
		Preview:   firstRunes(decoded, previewRunes),
		WordCount: countWords(decoded),
		LineCount: countLines(decoded),
		Encoding:  enc,
	}, nil
}

// looksTextual applies spec §4.4's heuristic: NUL bytes at most 10% of
// the sample, and control bytes other than \t\n\r below max(1, sample/20).
func looksTextual(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}
	nulCount := 0
	controlCount := 0
	for _, b := range sample {
		if b == 0 {
			nulCount++
			continue
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			controlCount++
		}
	}
	maxNul := len(sample) / 10
	maxControl := len(sample) / 20
	if maxControl < 1 {
		maxControl = 1
	}
	return nulCount <= maxNul && controlCount < maxControl
}

// decode detects a BOM-declared encoding or falls back to UTF-8 (if
// valid) or Windows-1252 with replacement for invalid byte sequences.
func decode(raw []byte) (string, string, error) {
	if enc, name, ok := sniffBOM(raw); ok {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", "", err
		}
		return name, string(out), nil
	}

	if utf8.Valid(raw) {
		return "utf-8", string(raw), nil
	}

	dec := charmap.Windows1252.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", "", err
	}
	return "windows-1252", string(out), nil
}

func sniffBOM(raw []byte) (encoding.Encoding, string, bool) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM, "utf-8-bom", true
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le", true
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be", true
	default:
		return nil, "", false
	}
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Snippet returns a ±ctx-rune window around the first case-insensitive
// occurrence of query in path's decoded content, or nil if not found.
func Snippet(path string, query string, ctx int, maxSize int64) (*string, error) {
	preview, err := readDecoded(path, maxSize)
	if err != nil {
		return nil, err
	}
	if preview == "" || query == "" {
		return nil, nil
	}

	lower := strings.ToLower(preview)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 {
		return nil, nil
	}

	runes := []rune(preview)
	// Map byte index idx to a rune index for window math.
	runeIdx := len([]rune(preview[:idx]))
	start := runeIdx - ctx
	if start < 0 {
		start = 0
	}
	end := runeIdx + len([]rune(query)) + ctx
	if end > len(runes) {
		end = len(runes)
	}
	snippet := string(runes[start:end])
	return &snippet, nil
}

func readDecoded(path string, maxSize int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fserr.Wrap(fserr.IO, "stat failed: "+path, err)
	}
	if info.IsDir() {
		return "", nil
	}
	limit := info.Size()
	if limit > maxSize {
		limit = maxSize
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fserr.Wrap(fserr.IO, "open failed: "+path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return "", fserr.Wrap(fserr.IO, "read failed: "+path, err)
	}
	_, decoded, err := decode(raw)
	if err != nil {
		return "", fserr.Wrap(fserr.Encoding, "decode failed: "+path, err)
	}
	return decoded, nil
}
