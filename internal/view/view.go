// Package view holds the templ components for the gallery, detail and map
// pages. Run "templ generate" after editing a .templ file.
package view

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/msomdec/snapmap/internal/domain"
	"github.com/msomdec/snapmap/internal/service"
)

// GridID is the element patched when the search query changes.
const GridID = "photo-grid"

// PhotoElementID is the DOM id of a photo's grid cell.
func PhotoElementID(id int64) string {
	return "photo-" + itoa(id)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func photoPath(id int64, suffix string) string {
	return "/photos/" + itoa(id) + suffix
}

func photoURL(id int64, suffix string) templ.SafeURL {
	return templ.URL(photoPath(id, suffix))
}

func mapURL(l *domain.Location) templ.SafeURL {
	return templ.URL("/map?q=" + url.QueryEscape(service.CoordinateString(l)))
}

// deleteAction is the datastar expression behind a delete button. From the
// grid the cell is removed in place; elsewhere the page redirects.
func deleteAction(id int64, fromGrid bool) string {
	target := photoPath(id, "/delete")
	if fromGrid {
		target += "?from=grid"
	}
	return "@post('" + target + "')"
}

func emptyMessage(query string) string {
	if query == "" {
		return "No photos yet. Capture one to get started."
	}
	return "No photos match “" + query + "”."
}

func takenAgo(t time.Time) string {
	return humanize.Time(t)
}

// fileSize is the humanized archive file size; negative means missing.
func fileSize(size int64) string {
	if size < 0 {
		return "missing"
	}
	return humanize.Bytes(uint64(size))
}

func formatMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " m"
}
