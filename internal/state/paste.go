package state

import (
	"strconv"

	"github.com/kk-code-lab/rtree/internal/fs"
)

// PasteDestination picks a path under dir for an entry named name that does
// not collide according to exists. The first collision tries "stem copy.ext",
// later ones "stem copy N.ext" with N counting up from 1. The stem and
// extension always come from the original name.
func PasteDestination(name, dir string, exists func(string) bool) string {
	dest := fs.JoinPath(dir, name)
	_, ext, hasExt := fs.SplitStem(fs.FileName(dest))
	stem, _, _ := fs.SplitStem(name)

	for ix := 0; exists(dest); ix++ {
		candidate := stem + " copy"
		if ix > 0 {
			candidate += " " + strconv.Itoa(ix)
		}
		if hasExt {
			candidate += "." + ext
		}
		dest = fs.JoinPath(dir, candidate)
	}
	return dest
}
