package cart

import "context"

// Store persists the serialized cart blob under a key fixed at construction.
//
// Load must degrade to an empty cart (nil slice, nil error) when the key is
// absent or the stored blob fails to parse; only genuine I/O failures may
// surface as errors. Save overwrites the whole blob. There is no migration
// or versioning logic: unknown fields are ignored on load and incompatible
// blobs are discarded.
type Store interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Clear(ctx context.Context) error
}
