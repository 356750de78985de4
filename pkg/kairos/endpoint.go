package kairos

import "strings"

// Endpoint identifies one remote operation of the Face API.
type Endpoint string

const (
	EndpointEnroll               Endpoint = "enroll"
	EndpointRecognize            Endpoint = "recognize"
	EndpointGalleryRemoveSubject Endpoint = "gallery/remove_subject"
	EndpointDetect               Endpoint = "detect"
	EndpointGalleryListAll       Endpoint = "gallery/list_all"
	EndpointGalleryView          Endpoint = "gallery/view"
)

// Endpoints returns every endpoint in a stable order.
func Endpoints() []Endpoint {
	return []Endpoint{
		EndpointEnroll,
		EndpointRecognize,
		EndpointGalleryRemoveSubject,
		EndpointDetect,
		EndpointGalleryListAll,
		EndpointGalleryView,
	}
}

// Path is the endpoint path relative to the API host.
func (e Endpoint) Path() string { return "/" + string(e) }

// Name is the operation name, e.g. "gallery_remove_subject".
func (e Endpoint) Name() string { return strings.ReplaceAll(string(e), "/", "_") }

// EndpointByName resolves an operation name (as returned by Name) to its endpoint.
func EndpointByName(name string) (Endpoint, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range Endpoints() {
		if e.Name() == name {
			return e, true
		}
	}
	return "", false
}
