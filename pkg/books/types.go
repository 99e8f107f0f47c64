package books

// Book is a catalogue record as returned by the service.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	CoverImageURL   string `json:"cover_image_url"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	NumberOfPages   int    `json:"number_of_pages"`
	ISBN            string `json:"isbn"`
}

// CreateRequest carries the fields of a new book. Nil optional fields are
// omitted from the request body.
type CreateRequest struct {
	Title           string  `json:"title" validate:"required,min=2,max=255"`
	Author          string  `json:"author" validate:"required,min=2,max=255"`
	CoverImageURL   *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	PublicationDate string  `json:"publication_date" validate:"required,datetime=2006-01-02"`
	NumberOfPages   int     `json:"number_of_pages" validate:"required,gt=0"`
	ISBN            string  `json:"isbn" validate:"required,len=13,numeric"`
}

// UpdateRequest is a partial update: only non-nil fields are sent.
type UpdateRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Author          *string `json:"author,omitempty" validate:"omitempty,min=2,max=255"`
	CoverImageURL   *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	PublicationDate *string `json:"publication_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumberOfPages   *int    `json:"number_of_pages,omitempty" validate:"omitempty,gt=0"`
	ISBN            *string `json:"isbn,omitempty" validate:"omitempty,len=13,numeric"`
}

// IsEmpty reports whether the update carries no fields.
func (r UpdateRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.CoverImageURL == nil &&
		r.Description == nil && r.PublicationDate == nil &&
		r.NumberOfPages == nil && r.ISBN == nil
}

// Apply returns b with the fields present in r overwritten.
func (r UpdateRequest) Apply(b Book) Book {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.CoverImageURL != nil {
		b.CoverImageURL = *r.CoverImageURL
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.PublicationDate != nil {
		b.PublicationDate = *r.PublicationDate
	}
	if r.NumberOfPages != nil {
		b.NumberOfPages = *r.NumberOfPages
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	return b
}

// Book returns the record a successful create would store, without an id.
func (r CreateRequest) Book() Book {
	b := Book{
		Title:           r.Title,
		Author:          r.Author,
		PublicationDate: r.PublicationDate,
		NumberOfPages:   r.NumberOfPages,
		ISBN:            r.ISBN,
	}
	if r.CoverImageURL != nil {
		b.CoverImageURL = *r.CoverImageURL
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	return b
}

// MessageResponse is the acknowledgement body of create and update.
type MessageResponse struct {
	Message string `json:"message"`
}

// String returns a pointer to s, for optional request fields.
func String(s string) *string { return &s }

// Int returns a pointer to n, for optional request fields.
func Int(n int) *int { return &n }
