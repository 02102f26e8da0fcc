package manage

import (
	"fmt"

	"photo-gallery/internal/models"
)

func indexOf(photos []models.Photo, id int64) int {
	for i, p := range photos {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Delete returns photos without the record id. An unknown id returns an equal copy.
func Delete(photos []models.Photo, id int64) []models.Photo {
	out := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// MoveTo returns a copy of photos with id at index to, clamped to the list bounds.
func MoveTo(photos []models.Photo, id int64, to int) ([]models.Photo, error) {
	from := indexOf(photos, id)
	if from < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhoto, id)
	}
	moved := photos[from]
	rest := make([]models.Photo, 0, len(photos))
	rest = append(rest, photos[:from]...)
	rest = append(rest, photos[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(rest) {
		to = len(rest)
	}
	out := make([]models.Photo, 0, len(photos))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out, nil
}

// InsertBefore mirrors a DOM insertBefore: id goes right before the sibling
// before, or to the end when before is nil. Inserting before itself is a no-op.
func InsertBefore(photos []models.Photo, id int64, before *int64) ([]models.Photo, error) {
	if indexOf(photos, id) < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhoto, id)
	}
	if before == nil {
		return MoveTo(photos, id, len(photos))
	}
	if *before == id {
		return append([]models.Photo{}, photos...), nil
	}
	target := indexOf(Delete(photos, id), *before)
	if target < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhoto, *before)
	}
	return MoveTo(photos, id, target)
}

// DropTarget returns the id of the first sibling whose vertical midpoint lies
// below pointerY, or nil when the item belongs at the end.
func DropTarget(siblings []models.SiblingBox, pointerY float64) *int64 {
	for _, s := range siblings {
		if pointerY < s.Top+s.Height/2 {
			id := s.ID
			return &id
		}
	}
	return nil
}

// RewriteOrder returns the records of photos in the order of ids.
func RewriteOrder(photos []models.Photo, ids []int64) ([]models.Photo, error) {
	if len(ids) != len(photos) {
		return nil, fmt.Errorf("%w: got %d ids for %d photos", ErrNotPermutation, len(ids), len(photos))
	}
	byID := make(map[int64]models.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}
	out := make([]models.Photo, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d unknown or repeated", ErrNotPermutation, id)
		}
		delete(byID, id)
		out = append(out, p)
	}
	return out, nil
}
