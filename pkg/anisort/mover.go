package anisort

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Move relocates src to dst, creating dst's parent directory as needed. It
// tries os.Rename first (the common case, a same-filesystem move) and falls
// back to a copy-then-remove when the rename fails for any reason (for
// example a cross-device move).
//
// If dryRun is true, Move only logs the action it would have taken and
// never touches the filesystem.
func Move(src, dst string, dryRun bool, log zerolog.Logger) error {
	if dryRun {
		log.Info().Str("src", src).Str("dst", dst).Msg("dry-run: would move file")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	return copyThenRemove(src, dst)
}

func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
