package refs

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kinnison/git-sync/pkg/objects"
)

// parsePackedRefs reads a packed-refs file:
//
//	# pack-refs with: peeled fully-peeled sorted
//	<hash> refs/heads/main
//	<hash> refs/tags/v1
//	^<peeled hash>
//
// Comment and peeled lines are skipped.
func parsePackedRefs(r io.Reader) (map[RefPath]objects.ObjectHash, error) {
	out := make(map[RefPath]objects.ObjectHash)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}

		hashStr, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("packed-refs line %d: missing name", lineNo)
		}
		hash, err := objects.ParseObjectHash(hashStr)
		if err != nil {
			return nil, fmt.Errorf("packed-refs line %d: %w", lineNo, err)
		}
		out[RefPath(name)] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
