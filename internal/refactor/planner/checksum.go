package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/millerr"
)

// checksumFiles records the SHA-256 of every file an edit touches, so the
// Executor can detect concurrent modification at apply time. Files that
// don't yet exist (creation targets) are skipped rather than erroring.
func checksumFiles(uris []lsp.DocumentURI) (map[string]string, error) {
	out := make(map[string]string, len(uris))
	for _, uri := range uris {
		path := uri.Path()
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, millerr.Wrap(millerr.IOError, "reading file for checksum", err)
		}
		sum := sha256.Sum256(content)
		out[path] = hex.EncodeToString(sum[:])
	}
	return out, nil
}
