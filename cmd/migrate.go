package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chauveaul/playbot/logger"
)

// legacyDBPath is where releases before ~/.pb kept the cache, relative to
// the working directory.
var legacyDBPath = "playbot.db"

// migrateLegacyDB copies legacy to target when legacy exists, is not the
// target itself, and target does not exist yet. The legacy file is left in
// place.
func migrateLegacyDB(out io.Writer, legacy, target string) error {
	if _, err := os.Stat(legacy); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat legacy database: %w", err)
	}
	if samePath(legacy, target) {
		return nil
	}
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat database: %w", err)
	}

	fmt.Fprintf(out, "📦 Migrating database from %s to %s\n", legacy, target)
	if err := copyFile(legacy, target); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Infof("[cmd] migrated legacy database %s to %s", legacy, target)
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
