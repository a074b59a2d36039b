package client

import (
	"sync"

	"github.com/google/uuid"

	"pod-catalog/internal/catalog"
)

// Draft is the client-local editable tree of variations backing the
// product form before submission. Every mutation rebuilds a deep copy of
// the variations and swaps it in whole, so a concurrent reader never
// observes a half-updated structure.
type Draft struct {
	mu         sync.Mutex
	variations []catalog.Variation
}

// NewDraft starts a draft from the given variations. The input is copied;
// later edits to it do not leak into the draft.
func NewDraft(vars []catalog.Variation) *Draft {
	return &Draft{variations: copyVariations(vars)}
}

// Variations returns a snapshot of the draft.
func (d *Draft) Variations() []catalog.Variation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyVariations(d.variations)
}

// mutate applies fn to a fresh copy and commits it only when fn reports
// success.
func (d *Draft) mutate(fn func(vars []catalog.Variation) ([]catalog.Variation, bool)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, ok := fn(copyVariations(d.variations))
	if ok {
		d.variations = next
	}
	return ok
}

// AddVariation appends a variation, assigning an id when the caller left
// it empty, and returns the id.
func (d *Draft) AddVariation(v catalog.Variation) string {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Images == nil {
		v.Images = []catalog.VariationImage{}
	}
	d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		return append(vars, v), true
	})
	return v.ID
}

// RemoveVariation deletes the variation with the given id.
func (d *Draft) RemoveVariation(id string) bool {
	return d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID == id {
				return append(vars[:i], vars[i+1:]...), true
			}
		}
		return nil, false
	})
}

// UpdateVariation applies fn to the variation with the given id. fn runs
// on the draft's own copy; holding references past the call has no
// effect on the draft.
func (d *Draft) UpdateVariation(id string, fn func(*catalog.Variation)) bool {
	return d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID == id {
				fn(&vars[i])
				return vars, true
			}
		}
		return nil, false
	})
}

// AddImage appends an image to the variation with the given id, assigning
// an image id when empty, and returns that id.
func (d *Draft) AddImage(variationID string, img catalog.VariationImage) (string, bool) {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	ok := d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID == variationID {
				vars[i].Images = append(vars[i].Images, img)
				return vars, true
			}
		}
		return nil, false
	})
	if !ok {
		return "", false
	}
	return img.ID, true
}

// RemoveImage deletes one image from one variation.
func (d *Draft) RemoveImage(variationID, imageID string) bool {
	return d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID != variationID {
				continue
			}
			for j := range vars[i].Images {
				if vars[i].Images[j].ID == imageID {
					vars[i].Images = append(vars[i].Images[:j], vars[i].Images[j+1:]...)
					return vars, true
				}
			}
			return nil, false
		}
		return nil, false
	})
}

// UpdateImage applies fn to one image in one variation.
func (d *Draft) UpdateImage(variationID, imageID string, fn func(*catalog.VariationImage)) bool {
	return d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID != variationID {
				continue
			}
			for j := range vars[i].Images {
				if vars[i].Images[j].ID == imageID {
					fn(&vars[i].Images[j])
					return vars, true
				}
			}
			return nil, false
		}
		return nil, false
	})
}

// SetPrimaryImage marks one image primary and clears the flag on every
// other image of the same variation. Primary is variation-wide: the
// exclusivity holds across angles within the variation and touches no
// other variation.
func (d *Draft) SetPrimaryImage(variationID, imageID string) bool {
	return d.mutate(func(vars []catalog.Variation) ([]catalog.Variation, bool) {
		for i := range vars {
			if vars[i].ID != variationID {
				continue
			}
			found := false
			for j := range vars[i].Images {
				isTarget := vars[i].Images[j].ID == imageID
				vars[i].Images[j].IsPrimary = isTarget
				if isTarget {
					found = true
				}
			}
			if !found {
				return nil, false
			}
			return vars, true
		}
		return nil, false
	})
}

// Submit returns the variations ready for persistence: images without a
// URL stripped and the single-primary invariant re-applied.
func (d *Draft) Submit() []catalog.Variation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := copyVariations(d.variations)
	for i := range out {
		catalog.NormalizeVariation(&out[i])
	}
	return out
}

func copyVariations(vars []catalog.Variation) []catalog.Variation {
	out := make([]catalog.Variation, len(vars))
	copy(out, vars)
	for i := range out {
		images := make([]catalog.VariationImage, len(out[i].Images))
		copy(images, out[i].Images)
		out[i].Images = images
	}
	return out
}
