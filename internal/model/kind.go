package model

import "strings"

// FieldKind identifies one of the categories of movie metadata that users
// can contribute to.  Each kind has its own payload shape, its own required
// moderation permission and its own duplicate-equality key.
type FieldKind string

const (
	FieldOtherTitle  FieldKind = "OTHER_TITLE"
	FieldReleaseDate FieldKind = "RELEASE_DATE"
	FieldOutline     FieldKind = "OUTLINE"
	FieldSummary     FieldKind = "SUMMARY"
	FieldSynopsis    FieldKind = "SYNOPSIS"
	FieldBoxOffice   FieldKind = "BOX_OFFICE"
	FieldSite        FieldKind = "SITE"
	FieldCountry     FieldKind = "COUNTRY"
	FieldLanguage    FieldKind = "LANGUAGE"
	FieldGenre       FieldKind = "GENRE"
	FieldReview      FieldKind = "REVIEW"
	FieldPhoto       FieldKind = "PHOTO"
	FieldPoster      FieldKind = "POSTER"
)

// FieldKinds lists every known kind in a stable order.  Used by the schema
// bootstrap and by tests that sweep all kinds.
var FieldKinds = []FieldKind{
	FieldOtherTitle, FieldReleaseDate, FieldOutline, FieldSummary,
	FieldSynopsis, FieldBoxOffice, FieldSite, FieldCountry,
	FieldLanguage, FieldGenre, FieldReview, FieldPhoto, FieldPoster,
}

// ParseFieldKind resolves a kind from a path segment or query value.  It
// accepts the canonical form (OTHER_TITLE) as well as lower-case and
// hyphenated forms (other-title) so the kind can appear in URLs.
func ParseFieldKind(s string) (FieldKind, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	k := FieldKind(normalized)
	for _, known := range FieldKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// String returns the canonical form of the kind.
func (k FieldKind) String() string { return string(k) }

// PathSegment returns the kind in the lower-case hyphenated form used in
// route paths, e.g. OTHER_TITLE -> other-title.
func (k FieldKind) PathSegment() string {
	return strings.ToLower(strings.ReplaceAll(string(k), "_", "-"))
}

// RequiredPermission returns the moderation permission a verifier must hold
// to resolve contributions of this kind.  PermissionAll always satisfies
// the check as well.
func (k FieldKind) RequiredPermission() Permission { return Permission(k) }

// Permission names a moderation right held by a user.  Per-kind permissions
// share the kind's canonical name; PermissionAll is the wildcard that covers
// every kind.
type Permission string

// PermissionAll grants verification rights over every field kind.
const PermissionAll Permission = "ALL"

// PermissionSet is the collection of permissions attached to a user.  It is
// persisted as a JSON array.
type PermissionSet []Permission

// Names returns the permissions as plain strings for JSON responses.  A
// nil set yields an empty, non-nil slice.
func (ps PermissionSet) Names() []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, string(p))
	}
	return names
}

// Allows reports whether the set contains the kind's required permission or
// the ALL wildcard.
func (ps PermissionSet) Allows(kind FieldKind) bool {
	required := kind.RequiredPermission()
	for _, p := range ps {
		if p == PermissionAll || p == required {
			return true
		}
	}
	return false
}
