// Package artifact persists the fitted pipeline (preprocessor state + boosted
// model) as a single self-describing file. The envelope carries a magic
// number, a format version, the preprocessor schema hash, and a CRC32 checksum
// over the JSON payload. There is no migration between versions or schemas:
// any mismatch fails fast at load time.
package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"time"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/feature"
	"github.com/RelioAI/relio-mvp/engine/model"
)

const (
	// Magic identifies reliability pipeline artifacts (ASCII "RLO1").
	Magic = 0x524C4F31
	// Version is the current envelope format version.
	Version = 1

	headerSize = 4 + 4 + 8 + 8 + 4
)

// Pipeline is the unit persisted per training run: everything needed to score
// a query exactly the way the training run would have. Treated as immutable
// after creation.
type Pipeline struct {
	State       *feature.State  `json:"state"`
	Model       *model.Ensemble `json:"model"`
	ModelConfig model.Config    `json:"model_config"`
	Target      string          `json:"target"`
	TrainedRows int             `json:"trained_rows"`
	TrainedAt   time.Time       `json:"trained_at"`
}

// Save writes the pipeline to path. The file is written via a temp sibling
// and renamed so a crashed save never leaves a half-written artifact behind.
func Save(path string, p *Pipeline) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("artifact: encode: %w", err)
	}

	var buf bytes.Buffer
	writeHeader(&buf, p.State.SchemaHash(), payload)
	buf.Write(payload)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact: rename: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, schemaHash uint64, payload []byte) {
	binary.Write(w, binary.BigEndian, uint32(Magic))
	binary.Write(w, binary.BigEndian, uint32(Version))
	binary.Write(w, binary.BigEndian, schemaHash)
	binary.Write(w, binary.BigEndian, uint64(len(payload)))
	binary.Write(w, binary.BigEndian, crc32.ChecksumIEEE(payload))
}

// Load reads and verifies an artifact. A missing file surfaces as
// ErrArtifactMissing; a bad magic number, unsupported version, checksum
// failure, truncated payload, undecodable payload, or schema-hash mismatch
// all surface as ErrArtifactCorrupt.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactCorrupt, path, err)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file shorter than header", domain.ErrArtifactCorrupt)
	}

	magic := binary.BigEndian.Uint32(data[0:4])
	version := binary.BigEndian.Uint32(data[4:8])
	schemaHash := binary.BigEndian.Uint64(data[8:16])
	payloadLen := binary.BigEndian.Uint64(data[16:24])
	checksum := binary.BigEndian.Uint32(data[24:28])

	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", domain.ErrArtifactCorrupt, magic)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrArtifactCorrupt, version)
	}
	payload := data[headerSize:]
	if uint64(len(payload)) != payloadLen {
		return nil, fmt.Errorf("%w: payload length %d, header says %d",
			domain.ErrArtifactCorrupt, len(payload), payloadLen)
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", domain.ErrArtifactCorrupt)
	}

	var p Pipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrArtifactCorrupt, err)
	}
	if p.State == nil || p.Model == nil {
		return nil, fmt.Errorf("%w: incomplete pipeline", domain.ErrArtifactCorrupt)
	}
	if got := p.State.SchemaHash(); got != schemaHash {
		return nil, fmt.Errorf("%w: schema hash 0x%016x, header says 0x%016x",
			domain.ErrArtifactCorrupt, got, schemaHash)
	}
	return &p, nil
}
