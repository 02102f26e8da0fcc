package models

import (
	"errors"
	"fmt"
)

var ErrDuplicateID = errors.New("duplicate photo id")

// Issue is one finding of Validate. Warnings do not make a list unusable.
type Issue struct {
	Index   int    `json:"index"`
	ID      int64  `json:"id"`
	Warning bool   `json:"warning"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	kind := "error"
	if i.Warning {
		kind = "warning"
	}
	return fmt.Sprintf("%s: entry %d (id %d): %s", kind, i.Index, i.ID, i.Message)
}

// Validate checks the invariants of a photo list: unique ids and a non-empty src.
// Dates that ParseDate rejects are reported as warnings since they only affect sorting.
func Validate(list []Photo) (issues []Issue, err error) {
	seen := make(map[int64]int, len(list))
	for i, p := range list {
		if first, dup := seen[p.ID]; dup {
			issues = append(issues, Issue{Index: i, ID: p.ID, Message: fmt.Sprintf("id already used by entry %d", first)})
			err = ErrDuplicateID
		} else {
			seen[p.ID] = i
		}
		if p.Src == "" {
			issues = append(issues, Issue{Index: i, ID: p.ID, Message: "src is empty"})
			if err == nil {
				err = errors.New("photo without src")
			}
		}
		if _, ok := ParseDate(p.Date); !ok {
			issues = append(issues, Issue{Index: i, ID: p.ID, Warning: true, Message: fmt.Sprintf("unparsable date %q sorts last", p.Date)})
		}
	}
	return issues, err
}
