package anisort

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Baughn/anidb-rs/pkg/anidb"
)

// clean makes a string safe to use as a path component: spaces become
// underscores, forward slashes become pipes (so a series or episode name
// containing "/" doesn't introduce spurious directories).
func clean(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "|")
	return s
}

// TargetPath computes the library path for a file identified as f, whose
// original path (used only for its extension) is origPath, rooted at
// libraryRoot.
func TargetPath(libraryRoot string, f anidb.FileRecord, origPath string) string {
	epNumber := f.EpNumber
	if n, err := strconv.Atoi(f.EpNumber); err == nil {
		width := len(strconv.FormatUint(uint64(f.TotalEps), 10))
		epNumber = fmt.Sprintf("%0*d", width, n)
	}

	ext := filepath.Ext(origPath)
	name := fmt.Sprintf("%s - %s %s%s", f.SeriesRomaji, epNumber, f.EpName, ext)

	return filepath.Join(libraryRoot, clean(f.SeriesRomaji), clean(name))
}
