package feed

import (
	"os"
	"path/filepath"

	"github.com/quantfeed/bookreplay/pkg/errors"
)

// Locate searches the working directory and up to maxDepth parent
// directories for a file with the given name, returning the first path that
// exists. The trade feed and the output file live beside the order feed, so
// one hit anchors all three.
func Locate(name string, maxDepth int) (string, error) {
	path := name
	for i := 0; i <= maxDepth; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.NewTracer("could not find " + name + " in any expected location").
		WithCode(errors.FeedDiscoveryError)
}

// Sibling returns the path to name in the directory containing ref.
func Sibling(ref, name string) string {
	return filepath.Join(filepath.Dir(ref), name)
}
