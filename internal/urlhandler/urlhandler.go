package urlhandler

import (
	"iter"
	"net/url"
	"strings"
)

// ResolveReference resolves a script source reference against the base URL of the page
// it was found on. Scheme-relative and path-absolute references inherit the base's scheme
// (and authority), relative references are merged with the base path with dot segments
// removed, and an empty reference resolves to the base itself. Fragments are kept.
func ResolveReference(base *url.URL, reference string) (*url.URL, error) {
	u, _, err := resolve(base, reference)
	return u, err
}

// ResolveString resolves like ResolveReference and returns the URL as text. Absolute
// references are returned as written, only stripped of surrounding whitespace.
func ResolveString(base *url.URL, reference string) (string, error) {
	u, absolute, err := resolve(base, reference)
	if err != nil {
		return "", err
	}
	if absolute {
		return strings.TrimSpace(reference), nil
	}
	return u.String(), nil
}

func resolve(base *url.URL, reference string) (*url.URL, bool, error) {
	if base == nil {
		return nil, false, &ReferenceError{Reference: reference, Err: ErrNoBase}
	}

	ref, err := url.Parse(strings.TrimSpace(reference))
	if err != nil {
		return nil, false, &ReferenceError{Reference: reference, Base: base.String(), Err: err}
	}
	if ref.IsAbs() {
		return ref, true, nil
	}

	return base.ResolveReference(ref), false, nil
}

// ResolveAll resolves every reference of the sequence against base. Each resolved URL is
// reported once, in first-seen order; references that fail to resolve are returned as
// errors and do not stop the remaining ones.
func ResolveAll(base *url.URL, references iter.Seq[string]) ([]string, []error) {
	var (
		resolved []string
		errs     []error
	)
	seen := make(map[string]struct{})

	for reference := range references {
		s, err := ResolveString(base, reference)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		resolved = append(resolved, s)
	}

	return resolved, errs
}
