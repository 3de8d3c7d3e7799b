package domain

// NoneTag is the tag the engine reports for dangling images.
const NoneTag = "<none>:<none>"

// Image represents an image available on the host.
type Image struct {
	Id       string   `json:"Id"`
	RepoTags []string `json:"RepoTags"`
	Size     int64    `json:"Size,omitempty"`
	Created  int64    `json:"Created,omitempty"`
}

// DisplayTag returns the first repository tag, which is used as the image name.
func (i Image) DisplayTag() (string, bool) {
	if len(i.RepoTags) == 0 {
		return "", false
	}
	return i.RepoTags[0], true
}

// Dangling reports whether the image has no usable tag.
func (i Image) Dangling() bool {
	tag, ok := i.DisplayTag()
	return !ok || tag == NoneTag
}
