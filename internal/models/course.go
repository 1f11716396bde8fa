package models

// Category groups subcategories (courses) in the catalog.
type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Subcategory is a purchasable course: an ordered sequence of videos.
type Subcategory struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Number `json:"price"`
	CategoryID  ID     `json:"category_id"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Video is one lesson of a course. SequenceNumber defines its position.
type Video struct {
	ID             ID     `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Duration       Number `json:"duration"` // seconds
	SequenceNumber Number `json:"sequence_number"`
	MediaURL       string `json:"media_url"`
	SubcategoryID  ID     `json:"subcategory_id"`
}

// PDF is a downloadable document sold on its own.
type PDF struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Price         Number `json:"price"`
	FileURL       string `json:"file_url"`
	CategoryID    ID     `json:"category_id"`
	SubcategoryID ID     `json:"subcategory_id"`
}

// Progress is the set of completed videos of a user within one course.
type Progress struct {
	UserID        ID   `json:"user_id"`
	SubcategoryID ID   `json:"subcategory_id"`
	Completed     []ID `json:"completed_videos"`
}
