package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tphakala/birdstrike/internal/errors"
)

const filePerm = 0o644

// PendingFile is a completely written temporary file waiting to be renamed over its
// target. Exactly one of Commit or Discard should be called.
type PendingFile struct {
	tempPath   string
	targetPath string
	done       bool
}

// Path returns the destination the file is committed to
func (p *PendingFile) Path() string {
	return p.targetPath
}

// Commit renames the temporary file into place. Failures are IOErrors.
func (p *PendingFile) Commit() error {
	if p.done {
		return nil
	}
	p.done = true
	if err := os.Rename(p.tempPath, p.targetPath); err != nil {
		_ = os.Remove(p.tempPath)
		return errors.IOError(fmt.Errorf("failed to rename temporary file: %w", err), p.targetPath)
	}
	return nil
}

// Discard removes the temporary file and leaves the target untouched. Safe after Commit.
func (p *PendingFile) Discard() {
	if p.done {
		return
	}
	p.done = true
	_ = os.Remove(p.tempPath)
}

// stageFile writes through a temporary file in the target directory. The target is
// not touched until the returned file is committed.
func stageFile(targetPath, tempPattern string, write func(io.Writer) error) (*PendingFile, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(targetPath), tempPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if err := tempFile.Chmod(filePerm); err != nil {
		return nil, fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := write(tempFile); err != nil {
		return nil, err
	}

	if err := tempFile.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	success = true
	return &PendingFile{tempPath: tempPath, targetPath: targetPath}, nil
}

// atomicWriteFile stages and commits in one step, so a failed write never leaves a
// partial file at targetPath.
func atomicWriteFile(targetPath, tempPattern string, write func(io.Writer) error) error {
	pending, err := stageFile(targetPath, tempPattern, write)
	if err != nil {
		return err
	}
	if err := os.Rename(pending.tempPath, targetPath); err != nil {
		pending.Discard()
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// WriteFile atomically writes whatever write produces to path. Used by side outputs
// that encode their own format; failures are IOErrors.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := atomicWriteFile(path, ".birdstrike-*.tmp", write); err != nil {
		return errors.IOError(err, path)
	}
	return nil
}
