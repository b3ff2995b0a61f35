package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Payload is the kind-specific body of a field record.  Implementations are
// plain value types; the envelope (status, submitter, pending change) lives
// on FieldRecord.  DuplicateKey returns the comparable key used by conflict
// detection: two payloads of the same kind with equal keys are considered
// the same value for one movie and may not be simultaneously ACCEPTED or
// WAITING.
type Payload interface {
	Kind() FieldKind
	DuplicateKey() string
	Validate() error
}

// CountryCode is an upper-case country identifier, e.g. USA or POLAND.
type CountryCode string

// Normalize upper-cases and trims the code.
func (c CountryCode) Normalize() CountryCode {
	return CountryCode(strings.ToUpper(strings.TrimSpace(string(c))))
}

// LanguageCode is an upper-case language identifier, e.g. ENGLISH.
type LanguageCode string

// Normalize upper-cases and trims the code.
func (l LanguageCode) Normalize() LanguageCode {
	return LanguageCode(strings.ToUpper(strings.TrimSpace(string(l))))
}

// GenreName is an upper-case genre identifier, e.g. DRAMA.
type GenreName string

// Normalize upper-cases and trims the name.
func (g GenreName) Normalize() GenreName {
	return GenreName(strings.ToUpper(strings.TrimSpace(string(g))))
}

// SiteKind distinguishes official sites from fan or press pages.
type SiteKind string

const (
	SiteOfficial    SiteKind = "OFFICIAL"
	SiteNonOfficial SiteKind = "NON_OFFICIAL"
)

// Text length limits carried over from the upstream data model.
const (
	maxOutlineLen  = 239
	maxSummaryLen  = 2000
	maxSynopsisLen = 100000
	maxReviewTitle = 200
	maxReviewLen   = 20000
)

// OtherTitle is an alternative title of a movie in a given country.
type OtherTitle struct {
	Title   string      `json:"title" validate:"required"`
	Country CountryCode `json:"country" validate:"required"`
}

func (p OtherTitle) Kind() FieldKind { return FieldOtherTitle }

// DuplicateKey treats titles case-insensitively within one country.
func (p OtherTitle) DuplicateKey() string {
	return strings.ToLower(p.Title) + "|" + string(p.Country.Normalize())
}

func (p OtherTitle) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("other title: title is required")
	}
	if p.Country.Normalize() == "" {
		return errors.New("other title: country is required")
	}
	return nil
}

// ReleaseDate is the premiere date of a movie in a given country.
type ReleaseDate struct {
	Date    Date        `json:"date" validate:"required"`
	Country CountryCode `json:"country" validate:"required"`
}

func (p ReleaseDate) Kind() FieldKind { return FieldReleaseDate }

func (p ReleaseDate) DuplicateKey() string {
	return p.Date.String() + "|" + string(p.Country.Normalize())
}

func (p ReleaseDate) Validate() error {
	if p.Date.IsZero() {
		return errors.New("release date: date is required")
	}
	if p.Country.Normalize() == "" {
		return errors.New("release date: country is required")
	}
	return nil
}

// Outline is a one-line description of a movie.
type Outline struct {
	Text string `json:"outline" validate:"required"`
}

func (p Outline) Kind() FieldKind      { return FieldOutline }
func (p Outline) DuplicateKey() string { return p.Text }

func (p Outline) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("outline: text is required")
	}
	if len(p.Text) > maxOutlineLen {
		return fmt.Errorf("outline: text exceeds %d characters", maxOutlineLen)
	}
	return nil
}

// Summary is a paragraph-length description of a movie.
type Summary struct {
	Text string `json:"summary" validate:"required"`
}

func (p Summary) Kind() FieldKind      { return FieldSummary }
func (p Summary) DuplicateKey() string { return p.Text }

func (p Summary) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("summary: text is required")
	}
	if len(p.Text) > maxSummaryLen {
		return fmt.Errorf("summary: text exceeds %d characters", maxSummaryLen)
	}
	return nil
}

// Synopsis is a full-length plot description of a movie.
type Synopsis struct {
	Text string `json:"synopsis" validate:"required"`
}

func (p Synopsis) Kind() FieldKind      { return FieldSynopsis }
func (p Synopsis) DuplicateKey() string { return p.Text }

func (p Synopsis) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("synopsis: text is required")
	}
	if len(p.Text) > maxSynopsisLen {
		return fmt.Errorf("synopsis: text exceeds %d characters", maxSynopsisLen)
	}
	return nil
}

// BoxOffice is the revenue earned by a movie in a given country.  Amounts
// are stored as integer cents so equality does not depend on a decimal
// representation.
type BoxOffice struct {
	AmountCents int64       `json:"amount_cents" validate:"required,gt=0"`
	Country     CountryCode `json:"country" validate:"required"`
}

func (p BoxOffice) Kind() FieldKind { return FieldBoxOffice }

func (p BoxOffice) DuplicateKey() string {
	return strconv.FormatInt(p.AmountCents, 10) + "|" + string(p.Country.Normalize())
}

func (p BoxOffice) Validate() error {
	if p.AmountCents <= 0 {
		return errors.New("box office: amount must be positive")
	}
	if p.Country.Normalize() == "" {
		return errors.New("box office: country is required")
	}
	return nil
}

// Site is a website related to a movie.
type Site struct {
	URL      string   `json:"url" validate:"required,url"`
	Official SiteKind `json:"official" validate:"required"`
}

func (p Site) Kind() FieldKind { return FieldSite }

func (p Site) DuplicateKey() string {
	return p.URL + "|" + string(p.Official)
}

func (p Site) Validate() error {
	u, err := url.Parse(p.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("site: url must be absolute")
	}
	if p.Official != SiteOfficial && p.Official != SiteNonOfficial {
		return errors.New("site: official must be OFFICIAL or NON_OFFICIAL")
	}
	return nil
}

// Country is a production country of a movie.
type Country struct {
	Country CountryCode `json:"country" validate:"required"`
}

func (p Country) Kind() FieldKind      { return FieldCountry }
func (p Country) DuplicateKey() string { return string(p.Country.Normalize()) }

func (p Country) Validate() error {
	if p.Country.Normalize() == "" {
		return errors.New("country: country is required")
	}
	return nil
}

// Language is a spoken language of a movie.
type Language struct {
	Language LanguageCode `json:"language" validate:"required"`
}

func (p Language) Kind() FieldKind      { return FieldLanguage }
func (p Language) DuplicateKey() string { return string(p.Language.Normalize()) }

func (p Language) Validate() error {
	if p.Language.Normalize() == "" {
		return errors.New("language: language is required")
	}
	return nil
}

// Genre is a genre of a movie.
type Genre struct {
	Genre GenreName `json:"genre" validate:"required"`
}

func (p Genre) Kind() FieldKind      { return FieldGenre }
func (p Genre) DuplicateKey() string { return string(p.Genre.Normalize()) }

func (p Genre) Validate() error {
	if p.Genre.Normalize() == "" {
		return errors.New("genre: genre is required")
	}
	return nil
}

// Review is a user-authored review of a movie.
type Review struct {
	Title   string `json:"title" validate:"required,max=200"`
	Text    string `json:"review" validate:"required"`
	Spoiler bool   `json:"spoiler"`
}

func (p Review) Kind() FieldKind { return FieldReview }

// DuplicateKey covers both title and body: the same reviewer text under a
// different heading is a distinct review.
func (p Review) DuplicateKey() string {
	return p.Title + "|" + p.Text
}

func (p Review) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("review: title is required")
	}
	if len(p.Title) > maxReviewTitle {
		return fmt.Errorf("review: title exceeds %d characters", maxReviewTitle)
	}
	if strings.TrimSpace(p.Text) == "" {
		return errors.New("review: text is required")
	}
	if len(p.Text) > maxReviewLen {
		return fmt.Errorf("review: text exceeds %d characters", maxReviewLen)
	}
	return nil
}

// Photo is a still image stored with an external provider.  The storage ID
// and provider tag are returned by the storage layer and treated as opaque
// values here.
type Photo struct {
	StorageID string `json:"storage_id" validate:"required"`
	Provider  string `json:"provider" validate:"required"`
}

func (p Photo) Kind() FieldKind      { return FieldPhoto }
func (p Photo) DuplicateKey() string { return p.Provider + "|" + p.StorageID }

func (p Photo) Validate() error {
	if p.StorageID == "" {
		return errors.New("photo: storage_id is required")
	}
	if p.Provider == "" {
		return errors.New("photo: provider is required")
	}
	return nil
}

// Poster is a poster image stored with an external provider.
type Poster struct {
	StorageID string `json:"storage_id" validate:"required"`
	Provider  string `json:"provider" validate:"required"`
}

func (p Poster) Kind() FieldKind      { return FieldPoster }
func (p Poster) DuplicateKey() string { return p.Provider + "|" + p.StorageID }

func (p Poster) Validate() error {
	if p.StorageID == "" {
		return errors.New("poster: storage_id is required")
	}
	if p.Provider == "" {
		return errors.New("poster: provider is required")
	}
	return nil
}

// EncodePayload serializes a payload to its JSON storage form.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil payload")
	}
	return json.Marshal(p)
}

// DecodePayload deserializes the JSON storage form of a payload for the
// given kind.  The kind acts as the discriminator; payload rows never carry
// their own type information.
func DecodePayload(kind FieldKind, data []byte) (Payload, error) {
	decode := func(dst Payload) (Payload, error) {
		// dst is a pointer; unmarshal into it and return the value.
		if err := json.Unmarshal(data, dst); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return derefPayload(dst), nil
	}
	switch kind {
	case FieldOtherTitle:
		return decode(&OtherTitle{})
	case FieldReleaseDate:
		return decode(&ReleaseDate{})
	case FieldOutline:
		return decode(&Outline{})
	case FieldSummary:
		return decode(&Summary{})
	case FieldSynopsis:
		return decode(&Synopsis{})
	case FieldBoxOffice:
		return decode(&BoxOffice{})
	case FieldSite:
		return decode(&Site{})
	case FieldCountry:
		return decode(&Country{})
	case FieldLanguage:
		return decode(&Language{})
	case FieldGenre:
		return decode(&Genre{})
	case FieldReview:
		return decode(&Review{})
	case FieldPhoto:
		return decode(&Photo{})
	case FieldPoster:
		return decode(&Poster{})
	}
	return nil, fmt.Errorf("unknown field kind %q", kind)
}

// derefPayload converts the pointer used during decoding back into the
// value form used everywhere else.
func derefPayload(p Payload) Payload {
	switch v := p.(type) {
	case *OtherTitle:
		return *v
	case *ReleaseDate:
		return *v
	case *Outline:
		return *v
	case *Summary:
		return *v
	case *Synopsis:
		return *v
	case *BoxOffice:
		return *v
	case *Site:
		return *v
	case *Country:
		return *v
	case *Language:
		return *v
	case *Genre:
		return *v
	case *Review:
		return *v
	case *Photo:
		return *v
	case *Poster:
		return *v
	}
	return p
}
