// Package archive locates and decodes archived factory save snapshots.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
)

// SaveExtension is the snapshot file suffix the reader accepts.
const SaveExtension = ".dsv"

// Reader finds save files under a directory and decodes them through the
// SaveDecoder port.
type Reader struct {
	saveDir string
	decoder port.SaveDecoder
}

// NewReader creates a reader rooted at saveDir. An empty saveDir triggers
// auto-detection of the game's platform default directories.
func NewReader(saveDir string, decoder port.SaveDecoder) *Reader {
	if saveDir == "" {
		saveDir = detectSaveDirectory()
	}
	return &Reader{saveDir: saveDir, decoder: decoder}
}

// detectSaveDirectory probes the game's default save locations.
// Windows: %USERPROFILE%\Documents\Dyson Sphere Program\Save
// Linux:   ~/.config/unity3d/Youthcat Studio/Dyson Sphere Program/Save
func detectSaveDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not resolve home directory", "error", err)
		return ""
	}

	candidates := []string{
		filepath.Join(home, "Documents", "Dyson Sphere Program", "Save"),
		filepath.Join(home, ".config", "unity3d", "Youthcat Studio", "Dyson Sphere Program", "Save"),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			slog.Info("Found save directory", "dir", dir)
			return dir
		}
	}

	slog.Warn("Save directory not found")
	return ""
}

// Latest decodes the most recently modified save file in the directory.
func (r *Reader) Latest(ctx context.Context) (*domain.FactoryState, error) {
	if r.saveDir == "" {
		return nil, domain.ErrDirectoryNotFound
	}
	if info, err := os.Stat(r.saveDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, r.saveDir)
	}

	entries, err := os.ReadDir(r.saveDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, r.saveDir)
	}

	var latestPath string
	var latestModTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), SaveExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latestPath == "" || info.ModTime().After(latestModTime) {
			latestPath = filepath.Join(r.saveDir, entry.Name())
			latestModTime = info.ModTime()
		}
	}

	if latestPath == "" {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoSnapshotsFound, r.saveDir)
	}

	slog.Info("Loading latest save", "file", filepath.Base(latestPath))
	return r.ParseFile(ctx, latestPath)
}

// ParseFile decodes a specific save file. Decode failures surface as
// DecodeFailed errors; an empty state is never substituted for a failed
// decode.
func (r *Reader) ParseFile(ctx context.Context, path string) (*domain.FactoryState, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}
	if !strings.EqualFold(filepath.Ext(path), SaveExtension) {
		return nil, fmt.Errorf("%w: %s (expected %s)", domain.ErrInvalidFormat, filepath.Ext(path), SaveExtension)
	}

	frame, err := r.decoder.Decode(ctx, path)
	if err != nil {
		slog.Error("Failed to decode save file", "file", filepath.Base(path), "error", err)
		if errors.Is(err, domain.ErrDecodeFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}

	return domain.FromSaveData(*frame), nil
}
