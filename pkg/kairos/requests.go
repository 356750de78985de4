package kairos

import "strconv"

// RequestOptions is the JSON body of a call. Nil or empty sends no body.
type RequestOptions map[string]any

// EnrollRequest registers a face image under a subject in a gallery.
// Either URL or Image (base64 data) should be set.
type EnrollRequest struct {
	URL         string
	Image       string
	SubjectID   string
	GalleryName string
}

// Options converts the request into a body mapping, omitting empty fields.
func (r EnrollRequest) Options() RequestOptions {
	opts := imageOptions(r.URL, r.Image)
	setString(opts, "subject_id", r.SubjectID)
	setString(opts, "gallery_name", r.GalleryName)
	return opts
}

// RecognizeRequest matches a face image against a gallery.
type RecognizeRequest struct {
	URL           string
	Image         string
	GalleryName   string
	Threshold     float64
	MaxNumResults int
}

// Options converts the request into a body mapping, omitting empty fields.
// Threshold and MaxNumResults are sent as strings, the form the service documents.
func (r RecognizeRequest) Options() RequestOptions {
	opts := imageOptions(r.URL, r.Image)
	setString(opts, "gallery_name", r.GalleryName)
	if r.Threshold > 0 {
		opts["threshold"] = strconv.FormatFloat(r.Threshold, 'f', -1, 64)
	}
	if r.MaxNumResults > 0 {
		opts["max_num_results"] = strconv.Itoa(r.MaxNumResults)
	}
	return opts
}

// RemoveSubjectRequest removes a subject from a gallery.
type RemoveSubjectRequest struct {
	GalleryName string
	SubjectID   string
}

func (r RemoveSubjectRequest) Options() RequestOptions {
	opts := RequestOptions{}
	setString(opts, "gallery_name", r.GalleryName)
	setString(opts, "subject_id", r.SubjectID)
	return opts
}

// DetectRequest finds faces in an image. Selector is e.g. "FULL" or "FACE".
type DetectRequest struct {
	URL      string
	Image    string
	Selector string
}

func (r DetectRequest) Options() RequestOptions {
	opts := imageOptions(r.URL, r.Image)
	setString(opts, "selector", r.Selector)
	return opts
}

// GalleryViewRequest lists the subjects of a gallery.
type GalleryViewRequest struct {
	GalleryName string
}

func (r GalleryViewRequest) Options() RequestOptions {
	opts := RequestOptions{}
	setString(opts, "gallery_name", r.GalleryName)
	return opts
}

func imageOptions(url, image string) RequestOptions {
	opts := RequestOptions{}
	setString(opts, "url", url)
	setString(opts, "image", image)
	return opts
}

func setString(opts RequestOptions, key, val string) {
	if val != "" {
		opts[key] = val
	}
}
