package resource

import (
	"time"

	"github.com/tradelore/tradelore/core"
)

// Categories
const (
	CategoryEquity     = "equity"
	CategoryOption     = "option"
	CategoryMutualFund = "mutual-fund"
	CategoryETF        = "etf"
	CategoryGeneral    = "general"
)

// File types
const (
	FileTypeVideo   = "video"
	FileTypePDF     = "pdf"
	FileTypeImage   = "image"
	FileTypeArticle = "article"
)

// Visibility
const (
	VisibilityPublic = "public"
	VisibilityAdmin  = "admin"
)

// Lifecycle states
const (
	StateDraft     = "draft"
	StatePublished = "published"
	StateTrashed   = "trashed"
)

var (
	AllCategories = []string{CategoryEquity, CategoryOption, CategoryMutualFund, CategoryETF, CategoryGeneral}
	AllFileTypes  = []string{FileTypeVideo, FileTypePDF, FileTypeImage, FileTypeArticle}
)

// Resource is one piece of educational content.
type Resource struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	FileType    string     `json:"file_type"`
	FileURL     string     `json:"file_url"`
	IsFeatured  bool       `json:"is_featured"`
	IsPublished bool       `json:"is_published"`
	Visibility  string     `json:"visibility"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// State reports where the resource sits in its lifecycle.
// A trashed resource remembers its published flag so restore round-trips.
func (r *Resource) State() string {
	switch {
	case r.IsDeleted:
		return StateTrashed
	case r.IsPublished:
		return StatePublished
	default:
		return StateDraft
	}
}

// IsExpired reports whether the resource is past its expiry date.
// Expiry affects display status only; it never flips IsPublished.
func (r *Resource) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// IsPublic reports whether the resource may be served to non-admin users.
func (r *Resource) IsPublic() bool {
	return r.IsPublished && !r.IsDeleted && r.Visibility != VisibilityAdmin
}

// Version is an immutable, append-only snapshot of a resource's file
// reference at a point in time.
type Version struct {
	ID            string    `json:"id"`
	ResourceID    string    `json:"resource_id"`
	FileURL       string    `json:"file_url"`
	UploadedBy    string    `json:"uploaded_by"`
	VersionNumber int       `json:"version_number"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewResource contains information needed to create a new Resource.
type NewResource struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description"`
	Category    string     `json:"category" validate:"required,oneof=equity option mutual-fund etf general"`
	FileType    string     `json:"file_type" validate:"required,oneof=video pdf image article"`
	FileURL     string     `json:"file_url" validate:"omitempty,url"`
	IsFeatured  bool       `json:"is_featured"`
	IsPublished bool       `json:"is_published"`
	Visibility  string     `json:"visibility" validate:"omitempty,oneof=public admin"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (nr *NewResource) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	if nr.Visibility == "" {
		nr.Visibility = VisibilityPublic
	}
	return core.Validate.Struct(nr)
}

// UpdateResource defines what information may be provided to modify an
// existing Resource. All attributes are replaced; editing never touches the
// deletion flags.
type UpdateResource struct {
	Title       string     `json:"title" validate:"required,notblank,max=200"`
	Description string     `json:"description"`
	Category    string     `json:"category" validate:"required,oneof=equity option mutual-fund etf general"`
	FileType    string     `json:"file_type" validate:"required,oneof=video pdf image article"`
	FileURL     string     `json:"file_url" validate:"omitempty,url"`
	IsFeatured  bool       `json:"is_featured"`
	IsPublished bool       `json:"is_published"`
	Visibility  string     `json:"visibility" validate:"omitempty,oneof=public admin"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (ur *UpdateResource) Validate() error {
	ur.Title = core.CleanString(ur.Title)
	ur.Description = core.CleanString(ur.Description)
	if ur.Visibility == "" {
		ur.Visibility = VisibilityPublic
	}
	return core.Validate.Struct(ur)
}

// QueryFilter narrows public resource listings.
// Search does a case-insensitive match on Title or Description.
type QueryFilter struct {
	Search       string `query:"search"`
	Category     string `query:"category"`
	FileType     string `query:"file_type"`
	FeaturedOnly bool   `query:"featured"`
	// PublicOnly restricts to published, non-deleted, publicly visible rows.
	// Always set for non-admin callers.
	PublicOnly bool
}
