package commit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kinnison/git-sync/pkg/objects"
)

// Commit is a parsed commit object.
//
// Commit Object Structure:
//
//	tree <hash>
//	parent <hash>        (zero or more)
//	author <person>
//	committer <person>
//	<other headers>      (gpgsig, encoding, mergetag; kept verbatim)
//
//	<message>
//
// Only tree and parent lines take part in reachability. The remaining
// headers are parsed leniently so that commits written by any git client
// can be walked.
type Commit struct {
	Tree      objects.ObjectHash
	Parents   []objects.ObjectHash
	Author    *Person
	Committer *Person
	Message   string
}

// Parse decodes a commit payload (no header).
func Parse(payload []byte) (*Commit, error) {
	headers, message, err := splitHeaders(payload)
	if err != nil {
		return nil, err
	}

	c := &Commit{Message: message}
	for _, h := range headers {
		switch h.key {
		case "tree":
			if c.Tree != "" {
				return nil, fmt.Errorf("multiple tree entries found")
			}
			hash, err := objects.ParseObjectHash(h.value)
			if err != nil {
				return nil, fmt.Errorf("invalid tree hash: %w", err)
			}
			c.Tree = hash
		case "parent":
			hash, err := objects.ParseObjectHash(h.value)
			if err != nil {
				return nil, fmt.Errorf("invalid parent hash: %w", err)
			}
			c.Parents = append(c.Parents, hash)
		case "author":
			c.Author, _ = ParsePerson(h.value)
		case "committer":
			c.Committer, _ = ParsePerson(h.value)
		}
	}

	if c.Tree == "" {
		return nil, fmt.Errorf("commit has no tree")
	}
	return c, nil
}

// References returns the tree followed by the parents.
func (c *Commit) References() []objects.ObjectHash {
	refs := make([]objects.ObjectHash, 0, len(c.Parents)+1)
	refs = append(refs, c.Tree)
	return append(refs, c.Parents...)
}

// IsInitialCommit returns true if this commit has no parents
func (c *Commit) IsInitialCommit() bool {
	return len(c.Parents) == 0
}

// Payload serializes the commit.
func (c *Commit) Payload() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author.FormatForGit())
	fmt.Fprintf(&buf, "committer %s\n", c.Committer.FormatForGit())
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes(), nil
}

// ToStoredObject serializes the commit and computes its id.
func (c *Commit) ToStoredObject() (*objects.StoredObject, error) {
	payload, err := c.Payload()
	if err != nil {
		return nil, err
	}
	return objects.NewStoredObject(objects.CommitType, payload), nil
}

// Validate checks that all fields needed to serialize are present
func (c *Commit) Validate() error {
	if err := c.Tree.Validate(); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	for _, p := range c.Parents {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("parent: %w", err)
		}
	}
	if c.Author == nil {
		return fmt.Errorf("author is required")
	}
	if c.Committer == nil {
		return fmt.Errorf("committer is required")
	}
	return nil
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{tree: %s, parents: %d, message: %.50q}",
		c.Tree.Short(), len(c.Parents), c.Message)
}

type header struct {
	key   string
	value string
}

// splitHeaders separates "key value" lines from the message. A line that
// starts with a space continues the previous header (gpgsig, mergetag).
func splitHeaders(payload []byte) ([]header, string, error) {
	text := string(payload)
	var headers []header

	for len(text) > 0 {
		nl := strings.IndexByte(text, '\n')
		if nl == -1 {
			return nil, "", fmt.Errorf("unterminated header line")
		}
		line := text[:nl]
		text = text[nl+1:]

		if line == "" {
			return headers, text, nil
		}
		if line[0] == ' ' {
			if len(headers) == 0 {
				return nil, "", fmt.Errorf("continuation line without header")
			}
			headers[len(headers)-1].value += "\n" + line[1:]
			continue
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, "", fmt.Errorf("invalid header line: %q", line)
		}
		headers = append(headers, header{key: key, value: value})
	}

	return headers, "", nil
}
