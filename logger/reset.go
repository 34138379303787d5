package logger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cespare/cp"
	"github.com/golang/snappy"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Manifest records what Reset archived, so `ldbctl` or any other
// reader can locate and verify a rotated log without guessing at
// naming conventions.
type Manifest struct {
	RunID          string    `json:"run_id"`
	ArchivedAt     time.Time `json:"archived_at"`
	SourcePath     string    `json:"source_path"`
	ArchivePath    string    `json:"archive_path"`
	CompressedPath string    `json:"compressed_path"`
	Checksum       string    `json:"checksum_blake2b256"`
	Bytes          int64     `json:"bytes"`
}

// doReset archives the current log file, compresses the archive,
// checksums it, writes a manifest, and truncates the live file —
// the enriched Go-native equivalent of logger_reset()'s bare
// "set a flag, the loop will fclose/fopen it" behavior.
func (l *Logger) doReset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("logger: sync before reset: %w", err)
	}

	runID := uuid.NewString()
	archivePath := fmt.Sprintf("%s.%s.archive", l.cfg.DataPath, runID)
	if err := cp.CopyFile(archivePath, l.cfg.DataPath); err != nil {
		return fmt.Errorf("logger: archive copy: %w", err)
	}

	raw, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("logger: read archive: %w", err)
	}

	compressed := snappy.Encode(nil, raw)
	compressedPath := archivePath + ".snappy"
	if err := os.WriteFile(compressedPath, compressed, 0o644); err != nil {
		return fmt.Errorf("logger: write compressed archive: %w", err)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return fmt.Errorf("logger: blake2b: %w", err)
	}
	h.Write(raw)
	sum := hex.EncodeToString(h.Sum(nil))

	manifest := Manifest{
		RunID:          runID,
		ArchivedAt:     time.Now(),
		SourcePath:     l.cfg.DataPath,
		ArchivePath:    archivePath,
		CompressedPath: compressedPath,
		Checksum:       sum,
		Bytes:          int64(len(raw)),
	}
	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("logger: marshal manifest: %w", err)
	}
	if err := os.WriteFile(archivePath+".manifest.json", manifestBytes, 0o644); err != nil {
		return fmt.Errorf("logger: write manifest: %w", err)
	}

	if err := l.f.Close(); err != nil {
		return fmt.Errorf("logger: close before truncate: %w", err)
	}
	f, err := os.Create(l.cfg.DataPath)
	if err != nil {
		return fmt.Errorf("logger: recreate %s: %w", l.cfg.DataPath, err)
	}
	l.f = f
	l.totalW = 0
	return nil
}
