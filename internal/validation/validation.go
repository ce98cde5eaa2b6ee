package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Registration messages, shown to users as-is.
const (
	MsgNameRequired     = "Name required"
	MsgEndpointRequired = "Valid endpoint URL required"
	MsgNameUnique       = "Name must be unique"
)

var (
	// semanticVersionRegex matches semantic versioning format (simplified)
	// Allows: 1.0.0, 1.0.0-alpha, 1.0.0-alpha.1, 1.0.0+build, 1.0.0-alpha+build
	semanticVersionRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

	// ErrInvalidVersion is returned when a version string is invalid
	ErrInvalidVersion = fmt.Errorf("invalid version format")

	// ErrInvalidURL is returned when a URL is invalid
	ErrInvalidURL = fmt.Errorf("invalid URL format")
)

// Errors collects every violation found while validating one input.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

// ValidateRegistration checks a draft item against the items already
// registered in both collections. All violations are returned together as
// Errors; nil means the draft is acceptable.
func ValidateRegistration(draft *models.Item, existing []*models.Item) error {
	var errs Errors
	name := ""
	if draft != nil {
		name = strings.TrimSpace(draft.Name)
	}
	if name == "" {
		errs = append(errs, MsgNameRequired)
	}
	if draft == nil || ValidateEndpoint(draft.Endpoint) != nil {
		errs = append(errs, MsgEndpointRequired)
	}
	if name != "" {
		for _, it := range existing {
			if it != nil && strings.EqualFold(strings.TrimSpace(it.Name), name) {
				errs = append(errs, MsgNameUnique)
				break
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateEndpoint requires an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	if err := ValidateURL(endpoint); err != nil {
		return err
	}
	u, _ := url.Parse(endpoint)
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint must use http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: endpoint host is empty", ErrInvalidURL)
	}
	return nil
}

// IsSemanticVersion checks if a version string follows semantic versioning.
// This is a lighter check that doesn't return detailed errors.
func IsSemanticVersion(version string) bool {
	if version == "" {
		return false
	}
	v := strings.TrimPrefix(version, "v")
	return semanticVersionRegex.MatchString(v) && semver.IsValid("v"+v)
}

// ValidateVersionLabel accepts the loose labels used by registry items,
// such as "1.0" or "v2".
func ValidateVersionLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: version cannot be empty", ErrInvalidVersion)
	}
	if _, err := mmsemver.NewVersion(label); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidVersion, label, err)
	}
	return nil
}

// LatestVersion returns the highest parseable version label, falling back
// to the last entry when none parse. Among equal versions a full semver
// label wins ("1.0.0" over "1.0"). Empty input yields "".
func LatestVersion(versions []models.Version) string {
	if len(versions) == 0 {
		return ""
	}
	var best *mmsemver.Version
	label := ""
	for _, v := range versions {
		parsed, err := mmsemver.NewVersion(v.V)
		if err != nil {
			continue
		}
		if best == nil || parsed.GreaterThan(best) ||
			(parsed.Equal(best) && IsSemanticVersion(v.V) && !IsSemanticVersion(label)) {
			best = parsed
			label = v.V
		}
	}
	if best == nil {
		return versions[len(versions)-1].V
	}
	return label
}

// ValidateURL checks if a string is a valid URL.
// It accepts both absolute URLs (with scheme) and relative URLs.
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "" {
		validSchemes := map[string]bool{
			"http":  true,
			"https": true,
			"ws":    true,
			"wss":   true,
			"file":  true,
		}
		if !validSchemes[u.Scheme] {
			return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
		}
	}

	return nil
}

// SanitizeName converts a display name into a lowercase, dash separated
// token suitable for file names.
func SanitizeName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	prevDash := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "item"
	}
	return result
}
