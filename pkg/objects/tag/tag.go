package tag

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/objects/commit"
)

// Tag is an annotated tag object.
//
//	object <hash>
//	type <kind of the target>
//	tag <name>
//	tagger <person>      (absent in some very old tags)
//
//	<message>
//
// The target can be an object of any kind, including another tag.
type Tag struct {
	Object     objects.ObjectHash
	TargetType objects.ObjectType
	Name       string
	Tagger     *commit.Person
	Message    string
}

// New creates a tag pointing at target.
func New(target objects.ObjectHash, targetType objects.ObjectType, name string, tagger *commit.Person, message string) (*Tag, error) {
	t := &Tag{Object: target, TargetType: targetType, Name: name, Tagger: tagger, Message: message}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse decodes a tag payload (no header).
func Parse(payload []byte) (*Tag, error) {
	head, message, found := bytes.Cut(payload, []byte("\n\n"))
	if !found {
		head = bytes.TrimSuffix(payload, []byte("\n"))
	}

	t := &Tag{Message: string(message)}
	for _, line := range strings.Split(string(head), "\n") {
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("invalid header line: %q", line)
		}
		switch key {
		case "object":
			if t.Object != "" {
				return nil, fmt.Errorf("multiple object entries found")
			}
			hash, err := objects.ParseObjectHash(value)
			if err != nil {
				return nil, fmt.Errorf("invalid object hash: %w", err)
			}
			t.Object = hash
		case "type":
			objType, err := objects.ParseObjectType(value)
			if err != nil {
				return nil, err
			}
			t.TargetType = objType
		case "tag":
			t.Name = value
		case "tagger":
			t.Tagger, _ = commit.ParsePerson(value)
		}
	}

	if t.Object == "" {
		return nil, fmt.Errorf("tag has no object")
	}
	return t, nil
}

// References returns the tagged object.
func (t *Tag) References() []objects.ObjectHash {
	return []objects.ObjectHash{t.Object}
}

// Validate checks the fields needed to serialize the tag.
func (t *Tag) Validate() error {
	if err := t.Object.Validate(); err != nil {
		return fmt.Errorf("object: %w", err)
	}
	if !t.TargetType.IsValid() {
		return fmt.Errorf("invalid target type %q", t.TargetType)
	}
	if t.Name == "" || strings.ContainsAny(t.Name, "\n") {
		return fmt.Errorf("invalid tag name %q", t.Name)
	}
	return nil
}

// Payload serializes the tag.
func (t *Tag) Payload() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object)
	fmt.Fprintf(&buf, "type %s\n", t.TargetType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	if t.Tagger != nil {
		fmt.Fprintf(&buf, "tagger %s\n", t.Tagger.FormatForGit())
	}
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes(), nil
}

// ToStoredObject serializes the tag and computes its id.
func (t *Tag) ToStoredObject() (*objects.StoredObject, error) {
	payload, err := t.Payload()
	if err != nil {
		return nil, err
	}
	return objects.NewStoredObject(objects.TagType, payload), nil
}
