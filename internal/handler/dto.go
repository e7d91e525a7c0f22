package handler

import (
	"time"

	"github.com/msomdec/snapmap/internal/domain"
)

// PhotoDTO is the JSON representation of a photo.
type PhotoDTO struct {
	ID        int64        `json:"id"`
	URI       string       `json:"uri"`
	Timestamp string       `json:"timestamp"`
	Location  *LocationDTO `json:"location"`
	FileURL   string       `json:"fileUrl"`
	ThumbURL  string       `json:"thumbUrl"`
}

// LocationDTO is the JSON representation of a coordinate fix.
type LocationDTO struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func toPhotoDTO(p domain.Photo) PhotoDTO {
	dto := PhotoDTO{
		ID:        p.ID,
		URI:       p.URI,
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
		FileURL:   photoPath(p.ID) + "/file",
		ThumbURL:  photoPath(p.ID) + "/thumb",
	}
	if l := p.Location; l != nil {
		dto.Location = &LocationDTO{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Altitude:  l.Altitude,
			Accuracy:  l.Accuracy,
		}
	}
	return dto
}

func toPhotoDTOs(photos []domain.Photo) []PhotoDTO {
	dtos := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos
}
