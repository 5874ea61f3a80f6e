package models

// Folder groups applications. Count is the number of applications filed in it.
type Folder struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Count    int    `json:"count"`
}

// FolderSummary is one dashboard row. Folder is nil for the unfiled bucket.
type FolderSummary struct {
	Folder             *Folder       `json:"folder"`
	RecentApplications []Application `json:"recent_applications"`
	ApplicationCount   int           `json:"application_count"`
}

type FolderCreate struct {
	Title    string `json:"title" validate:"required,max=255"`
	Position int    `json:"position" validate:"gte=0"`
}

type FolderUpdate struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Position *int    `json:"position,omitempty" validate:"omitempty,gte=0"`
}
