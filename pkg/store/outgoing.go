package store

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/objects/blob"
	"github.com/kinnison/git-sync/pkg/objects/commit"
	"github.com/kinnison/git-sync/pkg/objects/tag"
	"github.com/kinnison/git-sync/pkg/objects/tree"
)

// References returns the ids obj points to within its repository: nothing
// for a blob, the non-gitlink entries of a tree, tree and parents of a
// commit, the target of a tag. The result may contain duplicates.
func References(obj *objects.StoredObject) ([]objects.ObjectHash, error) {
	switch obj.Type {
	case objects.BlobType:
		return blob.Parse(obj.Payload).References(), nil
	case objects.TreeType:
		t, err := tree.Parse(obj.Payload)
		if err != nil {
			return nil, objects.NewFormatError(obj.ID, err)
		}
		return t.References(), nil
	case objects.CommitType:
		c, err := commit.Parse(obj.Payload)
		if err != nil {
			return nil, objects.NewFormatError(obj.ID, err)
		}
		return c.References(), nil
	case objects.TagType:
		tg, err := tag.Parse(obj.Payload)
		if err != nil {
			return nil, objects.NewFormatError(obj.ID, err)
		}
		return tg.References(), nil
	default:
		return nil, objects.NewFormatError(obj.ID, fmt.Errorf("unknown object type %q", obj.Type))
	}
}
