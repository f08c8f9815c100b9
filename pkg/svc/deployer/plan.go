package deployer

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/google/go-containerregistry/pkg/name"
)

// versionTagPattern matches tags that start with a full release version core (v1.2.3, 1.2.3-rc.1).
// Other tags such as 1.2, 1.2.3.4 or 2024.01.15 are ordinary tags.
var versionTagPattern = regexp.MustCompile(`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:[-+]|$)`)

var (
	// ErrNoImages is returned when the project configures no images.
	ErrNoImages = errors.New("no images configured")
	// ErrUnknownImage is returned when a requested image is not configured.
	ErrUnknownImage = errors.New("unknown image")
	// ErrInvalidVersionTag is returned when a version-like tag is not valid semver.
	ErrInvalidVersionTag = errors.New("tag looks like a version but is not valid semver")
)

// ImagePlan is one image with every reference it is tagged and pushed as.
// The first reference is the primary one used for the build.
type ImagePlan struct {
	Image      v1alpha1.Image
	References []string
}

// Primary returns the reference the image is built as.
func (p ImagePlan) Primary() string {
	return p.References[0]
}

// PlanImages resolves the images called names (all images when names is empty) into
// registry references for tag. alsoLatest adds a latest reference for version tags.
func PlanImages(spec v1alpha1.Spec, names []string, tag string, alsoLatest bool) ([]ImagePlan, error) {
	if len(spec.Images) == 0 {
		return nil, ErrNoImages
	}

	if tag == "" {
		tag = spec.Tag
	}

	if tag == "" {
		tag = v1alpha1.DefaultTag
	}

	isVersion, err := checkVersionTag(tag)
	if err != nil {
		return nil, err
	}

	images := spec.Images

	if len(names) > 0 {
		images = make([]v1alpha1.Image, 0, len(names))

		for _, imageName := range names {
			image, ok := spec.Image(imageName)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownImage, imageName)
			}

			images = append(images, image)
		}
	}

	plans := make([]ImagePlan, 0, len(images))

	for _, image := range images {
		refs := []string{spec.Registry.ImageReference(image.Name, tag)}
		if alsoLatest && isVersion {
			refs = append(refs, spec.Registry.ImageReference(image.Name, v1alpha1.DefaultTag))
		}

		plans = append(plans, ImagePlan{Image: image, References: refs})
	}

	return plans, nil
}

// AllReferences flattens the references of plans in order.
func AllReferences(plans []ImagePlan) []string {
	var refs []string

	for _, plan := range plans {
		refs = append(refs, plan.References...)
	}

	return refs
}

// Repositories returns the references of plans without tag or digest, deduplicated in order.
// The registry and repository are kept exactly as written so they compare equal to the image
// names containers were started from.
func Repositories(plans []ImagePlan) ([]string, error) {
	var repos []string

	for _, ref := range AllReferences(plans) {
		parsed, err := name.ParseReference(ref)
		if err != nil {
			return nil, fmt.Errorf("parse image reference %s: %w", ref, err)
		}

		repo := ref

		switch parsed.(type) {
		case name.Digest:
			repo = strings.TrimSuffix(ref, "@"+parsed.Identifier())
		case name.Tag:
			repo = strings.TrimSuffix(ref, ":"+parsed.Identifier())
		}

		if !slices.Contains(repos, repo) {
			repos = append(repos, repo)
		}
	}

	return repos, nil
}

// checkVersionTag reports whether tag is a release version (v1.2.3 or 1.2.3) and fails
// when such a tag is not strict semver.
func checkVersionTag(tag string) (bool, error) {
	if !versionTagPattern.MatchString(tag) {
		return false, nil
	}

	_, err := semver.StrictNewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidVersionTag, tag, err)
	}

	return true, nil
}
