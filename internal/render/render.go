// Package render turns gallery and manage state into HTML pages.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"photo-gallery/internal/gallery"
	"photo-gallery/internal/manage"
	"photo-gallery/internal/models"
)

// EmptyMessage replaces the grid when the view has no photos.
const EmptyMessage = "No photos to display."

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type homePage struct {
	Search   string
	Sort     string
	Photos   []photoLink
	Empty    string
	Lightbox *lightbox
	CloseURL string
}

type photoLink struct {
	models.Photo
	URL string
}

type lightbox struct {
	Photo    models.Photo
	Position int
	Total    int
	PrevURL  string
	NextURL  string
}

// Home writes the gallery page for st.
func Home(w io.Writer, st gallery.State) error {
	page := homePage{
		Search:   st.Search,
		Sort:     string(st.Sort),
		Empty:    EmptyMessage,
		CloseURL: HomeURL(st.Search, st.Sort, nil),
	}
	for _, p := range st.View {
		id := p.ID
		page.Photos = append(page.Photos, photoLink{Photo: p, URL: HomeURL(st.Search, st.Sort, &id)})
	}
	if cur, ok := st.Current(); ok {
		prev, next, _ := st.Neighbours()
		page.Lightbox = &lightbox{
			Photo:    cur,
			Position: st.Lightbox.Index + 1,
			Total:    len(st.View),
			PrevURL:  HomeURL(st.Search, st.Sort, &prev.ID),
			NextURL:  HomeURL(st.Search, st.Sort, &next.ID),
		}
	}
	return execute(w, "home.html", page)
}

// HomeURL is the home page link for a search, sort and optionally open photo.
func HomeURL(search string, sort gallery.SortKey, photo *int64) string {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if sort != gallery.SortNone {
		q.Set("sort", string(sort))
	}
	if photo != nil {
		q.Set("photo", strconv.FormatInt(*photo, 10))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

type adminPage struct {
	State      manage.State
	Configured bool
	ExportName string
}

// Admin writes the manage page for st.
func Admin(w io.Writer, st manage.State, configured bool) error {
	return execute(w, "admin.html", adminPage{
		State:      st,
		Configured: configured,
		ExportName: manage.ExportFilename,
	})
}

func execute(w io.Writer, name string, data interface{}) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
