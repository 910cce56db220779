// Package persist serialises the full engine state (documents, metadata,
// and all index tables) into a single snapshot file and restores it. The
// format is a fixed binary header, a JSON body, and a CRC32 footer; writes
// go to a temp file first and are renamed into place atomically.
package persist

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"

	apperrors "github.com/docsearch-labs/docsearch/pkg/errors"

	"github.com/docsearch-labs/docsearch/internal/store"
)

// MagicBytes identifies a valid .dsix snapshot file ("DSIX").
const (
	MagicBytes    uint32 = 0x44534958
	FormatVersion uint32 = 1
	headerSize    int    = 32
	footerSize    int    = 8
)

// State is the serialisable form of the engine's tables.
type State struct {
	Documents       map[string]string         `json:"documents"`
	Metadata        map[string]store.Metadata `json:"metadata"`
	InvertedIndex   map[string][]string       `json:"inverted_index"`
	TermFrequencies map[string]map[string]int `json:"term_frequencies"`
	DocFrequencies  map[string]int            `json:"doc_frequencies"`
	DocLengths      map[string]int            `json:"doc_lengths"`
}

// Save writes the state to path atomically. The header records magic,
// version, document count, and term count; the footer carries a CRC32 of
// the JSON body and the body length.
func Save(path string, st *State) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling index state: %w", err)
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(st.Documents)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(st.InvertedIndex)))

	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(body))
	binary.LittleEndian.PutUint32(footer[4:8], uint32(len(body)))

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer f.Close()

	for _, chunk := range [][]byte{header, body, footer} {
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}

// Load reads and validates a snapshot file. Unreadable or corrupt files are
// hard failures: the returned error wraps ErrCorruptIndex when the file
// content is invalid.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %s: %w", path, err)
	}
	if len(data) < headerSize+footerSize {
		return nil, fmt.Errorf("%w: snapshot file %s truncated (%d bytes)", apperrors.ErrCorruptIndex, path, len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x in %s", apperrors.ErrCorruptIndex, magic, path)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d in %s", apperrors.ErrCorruptIndex, version, path)
	}

	body := data[headerSize : len(data)-footerSize]
	footer := data[len(data)-footerSize:]
	wantSum := binary.LittleEndian.Uint32(footer[0:4])
	wantLen := binary.LittleEndian.Uint32(footer[4:8])
	if uint32(len(body)) != wantLen {
		return nil, fmt.Errorf("%w: snapshot body length mismatch in %s: have %d, want %d", apperrors.ErrCorruptIndex, path, len(body), wantLen)
	}
	if crc32.ChecksumIEEE(body) != wantSum {
		return nil, fmt.Errorf("%w: snapshot checksum mismatch in %s", apperrors.ErrCorruptIndex, path)
	}

	var st State
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("%w: parsing snapshot body: %v", apperrors.ErrCorruptIndex, err)
	}
	normalize(&st)
	return &st, nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// normalize replaces nil maps with empty ones so callers never see nil
// tables after a load.
func normalize(st *State) {
	if st.Documents == nil {
		st.Documents = make(map[string]string)
	}
	if st.Metadata == nil {
		st.Metadata = make(map[string]store.Metadata)
	}
	if st.InvertedIndex == nil {
		st.InvertedIndex = make(map[string][]string)
	}
	if st.TermFrequencies == nil {
		st.TermFrequencies = make(map[string]map[string]int)
	}
	if st.DocFrequencies == nil {
		st.DocFrequencies = make(map[string]int)
	}
	if st.DocLengths == nil {
		st.DocLengths = make(map[string]int)
	}
}
