package books

import (
	"net/url"
	"strconv"
	"strings"
)

// Form field names shared by the client and the service.
const (
	fieldTitle           = "title"
	fieldAuthor          = "author"
	fieldCoverImageURL   = "cover_image_url"
	fieldDescription     = "description"
	fieldPublicationDate = "publication_date"
	fieldNumberOfPages   = "number_of_pages"
	fieldISBN            = "isbn"
)

// EncodeForm returns the form-urlencoded fields of a create request. Nil
// optional fields are omitted; a pointer to "" is sent as an empty value.
func (r CreateRequest) EncodeForm() url.Values {
	v := url.Values{}
	v.Set(fieldTitle, r.Title)
	v.Set(fieldAuthor, r.Author)
	setOptional(v, fieldCoverImageURL, r.CoverImageURL)
	setOptional(v, fieldDescription, r.Description)
	v.Set(fieldPublicationDate, r.PublicationDate)
	v.Set(fieldNumberOfPages, strconv.Itoa(r.NumberOfPages))
	v.Set(fieldISBN, r.ISBN)
	return v
}

// EncodeForm returns only the fields present in the update.
func (r UpdateRequest) EncodeForm() url.Values {
	v := url.Values{}
	setOptional(v, fieldTitle, r.Title)
	setOptional(v, fieldAuthor, r.Author)
	setOptional(v, fieldCoverImageURL, r.CoverImageURL)
	setOptional(v, fieldDescription, r.Description)
	setOptional(v, fieldPublicationDate, r.PublicationDate)
	if r.NumberOfPages != nil {
		v.Set(fieldNumberOfPages, strconv.Itoa(*r.NumberOfPages))
	}
	setOptional(v, fieldISBN, r.ISBN)
	return v
}

// DecodeCreateForm parses a create form. Missing optional fields stay nil.
// A malformed page count yields a *ValidationError.
func DecodeCreateForm(v url.Values) (CreateRequest, error) {
	req := CreateRequest{
		Title:           strings.TrimSpace(v.Get(fieldTitle)),
		Author:          strings.TrimSpace(v.Get(fieldAuthor)),
		CoverImageURL:   optional(v, fieldCoverImageURL),
		Description:     optional(v, fieldDescription),
		PublicationDate: strings.TrimSpace(v.Get(fieldPublicationDate)),
		ISBN:            strings.TrimSpace(v.Get(fieldISBN)),
	}
	if raw := strings.TrimSpace(v.Get(fieldNumberOfPages)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return CreateRequest{}, &ValidationError{Fields: []FieldError{{Field: fieldNumberOfPages, Rule: "integer"}}}
		}
		req.NumberOfPages = n
	}
	return req, nil
}

// DecodeUpdateForm parses a partial update form.
func DecodeUpdateForm(v url.Values) (UpdateRequest, error) {
	req := UpdateRequest{
		Title:           optional(v, fieldTitle),
		Author:          optional(v, fieldAuthor),
		CoverImageURL:   optional(v, fieldCoverImageURL),
		Description:     optional(v, fieldDescription),
		PublicationDate: optional(v, fieldPublicationDate),
		ISBN:            optional(v, fieldISBN),
	}
	if _, ok := v[fieldNumberOfPages]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v.Get(fieldNumberOfPages)))
		if err != nil {
			return UpdateRequest{}, &ValidationError{Fields: []FieldError{{Field: fieldNumberOfPages, Rule: "integer"}}}
		}
		req.NumberOfPages = &n
	}
	return req, nil
}

func setOptional(v url.Values, key string, value *string) {
	if value != nil {
		v.Set(key, *value)
	}
}

func optional(v url.Values, key string) *string {
	if _, ok := v[key]; !ok {
		return nil
	}
	s := strings.TrimSpace(v.Get(key))
	return &s
}
