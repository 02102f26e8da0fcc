package models

// Photo is one entry of the published gallery list.
// Field names match gallery-data.json.
type Photo struct {
	ID          int64  `json:"id"`
	Src         string `json:"src"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// PhotoIDs returns the ids of list in order.
func PhotoIDs(list []Photo) []int64 {
	ids := make([]int64, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}
