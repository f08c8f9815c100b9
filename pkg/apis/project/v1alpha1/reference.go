package v1alpha1

import "strings"

// ImageReference returns <host>/<repository>/<name>:<tag>, leaving out empty segments.
func (r Registry) ImageReference(name, tag string) string {
	segments := make([]string, 0, 3)

	for _, segment := range []string{r.Host, r.Repository, name} {
		segment = strings.Trim(segment, "/")
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	ref := strings.Join(segments, "/")
	if tag == "" {
		return ref
	}

	return ref + ":" + tag
}

// Image returns the configured image called name.
func (s Spec) Image(name string) (Image, bool) {
	for _, image := range s.Images {
		if image.Name == name {
			return image, true
		}
	}

	return Image{}, false
}
