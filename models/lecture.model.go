package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lecture resource types
const (
	ResourceTypePDF   = "pdf"
	ResourceTypeDoc   = "doc"
	ResourceTypePPT   = "ppt"
	ResourceTypeLink  = "link"
	ResourceTypeOther = "other"
)

// Resource is supplementary material attached to a lecture
type Resource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"` // pdf, doc, ppt, link, other
}

// ValidResourceType reports whether t is one of the accepted resource types.
func ValidResourceType(t string) bool {
	switch t {
	case ResourceTypePDF, ResourceTypeDoc, ResourceTypePPT, ResourceTypeLink, ResourceTypeOther:
		return true
	}
	return false
}

// Lecture represents video content within a course
type Lecture struct {
	gorm.Model
	CourseID        uint           `json:"course_id" gorm:"index;not null"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	VideoURL        string         `json:"video_url"`
	VideoStorageID  string         `json:"video_storage_id"`
	DurationSeconds int            `json:"duration_seconds" gorm:"default:0"`
	OrderIndex      int            `json:"order_index" gorm:"default:0"` // display sequence within course
	IsPreview       bool           `json:"is_preview" gorm:"default:false"`
	Notes           string         `json:"notes" gorm:"type:text"`
	Resources       datatypes.JSON `json:"resources"`
	IsDeleted       bool           `gorm:"default:false" json:"-"`
}

// SetResources stores the resource list as a JSON column value.
func (l *Lecture) SetResources(resources []Resource) error {
	if resources == nil {
		resources = []Resource{}
	}
	raw, err := json.Marshal(resources)
	if err != nil {
		return err
	}
	l.Resources = datatypes.JSON(raw)
	return nil
}

// ResourceList decodes the stored resource JSON.
func (l Lecture) ResourceList() []Resource {
	var resources []Resource
	if len(l.Resources) == 0 {
		return resources
	}
	_ = json.Unmarshal(l.Resources, &resources)
	return resources
}
