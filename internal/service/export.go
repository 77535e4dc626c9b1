package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EncodeRanking writes ranking as indented JSON.
func EncodeRanking(w io.Writer, ranking *Ranking) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ranking); err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}
	return nil
}

// ExportRanking writes ranking to path. The file is written next to its
// destination and renamed into place so readers never see a partial file.
func ExportRanking(path string, ranking *Ranking) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ranking-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeRanking(tmp, ranking); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move ranking into place: %w", err)
	}
	return nil
}
