package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOtherTitleDuplicateKeyIgnoresCase(t *testing.T) {
	a := OtherTitle{Title: "Film1", Country: "POLAND"}
	b := OtherTitle{Title: "film1", Country: "poland"}
	assert.Equal(t, a.DuplicateKey(), b.DuplicateKey())

	c := OtherTitle{Title: "Film1", Country: "USA"}
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey())
}

func TestReleaseDateDuplicateKey(t *testing.T) {
	a := ReleaseDate{Date: NewDate(2020, time.March, 5), Country: "USA"}
	b := ReleaseDate{Date: NewDate(2020, time.March, 5), Country: "usa"}
	assert.Equal(t, a.DuplicateKey(), b.DuplicateKey())

	c := ReleaseDate{Date: NewDate(2020, time.March, 6), Country: "USA"}
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey())
}

func TestBoxOfficeDuplicateKey(t *testing.T) {
	a := BoxOffice{AmountCents: 100000, Country: "USA"}
	b := BoxOffice{AmountCents: 100000, Country: "usa"}
	assert.Equal(t, a.DuplicateKey(), b.DuplicateKey())

	c := BoxOffice{AmountCents: 100001, Country: "USA"}
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey())
}

func TestSiteDuplicateKeyIncludesOfficialFlag(t *testing.T) {
	a := Site{URL: "https://example.com", Official: SiteOfficial}
	b := Site{URL: "https://example.com", Official: SiteNonOfficial}
	assert.NotEqual(t, a.DuplicateKey(), b.DuplicateKey())
}

func TestTextDuplicateKeysAreExact(t *testing.T) {
	assert.NotEqual(t, Outline{Text: "A heist."}.DuplicateKey(), Outline{Text: "a heist."}.DuplicateKey())
	assert.Equal(t, Summary{Text: "Long."}.DuplicateKey(), Summary{Text: "Long."}.DuplicateKey())
}

func TestReviewDuplicateKeyCoversTitleAndText(t *testing.T) {
	a := Review{Title: "Great", Text: "Loved it"}
	b := Review{Title: "Great", Text: "Hated it"}
	c := Review{Title: "Meh", Text: "Loved it"}
	assert.NotEqual(t, a.DuplicateKey(), b.DuplicateKey())
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey())
}

func TestCodeDuplicateKeysNormalize(t *testing.T) {
	assert.Equal(t, Country{Country: " poland "}.DuplicateKey(), Country{Country: "POLAND"}.DuplicateKey())
	assert.Equal(t, Language{Language: "english"}.DuplicateKey(), Language{Language: "ENGLISH"}.DuplicateKey())
	assert.Equal(t, Genre{Genre: "drama"}.DuplicateKey(), Genre{Genre: "DRAMA"}.DuplicateKey())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := []Payload{
		OtherTitle{Country: "USA"},
		OtherTitle{Title: "x"},
		ReleaseDate{Country: "USA"},
		Outline{},
		Summary{},
		Synopsis{},
		BoxOffice{Country: "USA"},
		BoxOffice{AmountCents: -5, Country: "USA"},
		Site{URL: "not a url", Official: SiteOfficial},
		Site{URL: "https://example.com", Official: "MAYBE"},
		Country{},
		Language{},
		Genre{},
		Review{Text: "body"},
		Review{Title: "t"},
		Photo{Provider: "local"},
		Poster{StorageID: "abc"},
	}
	for _, p := range cases {
		assert.Error(t, p.Validate(), "%#v should not validate", p)
	}
}

func TestValidateEnforcesLengthLimits(t *testing.T) {
	assert.Error(t, Outline{Text: strings.Repeat("a", maxOutlineLen+1)}.Validate())
	assert.NoError(t, Outline{Text: strings.Repeat("a", maxOutlineLen)}.Validate())
	assert.Error(t, Summary{Text: strings.Repeat("a", maxSummaryLen+1)}.Validate())
	assert.Error(t, Review{Title: strings.Repeat("a", maxReviewTitle+1), Text: "x"}.Validate())
	assert.Error(t, Review{Title: "t", Text: strings.Repeat("a", maxReviewLen+1)}.Validate())
}

func TestEncodeDecodeAllKinds(t *testing.T) {
	samples := map[FieldKind]Payload{
		FieldOtherTitle:  OtherTitle{Title: "Film1", Country: "POLAND"},
		FieldReleaseDate: ReleaseDate{Date: NewDate(1999, time.October, 12), Country: "USA"},
		FieldOutline:     Outline{Text: "Short."},
		FieldSummary:     Summary{Text: "Medium."},
		FieldSynopsis:    Synopsis{Text: "Long."},
		FieldBoxOffice:   BoxOffice{AmountCents: 100000, Country: "USA"},
		FieldSite:        Site{URL: "https://example.com", Official: SiteOfficial},
		FieldCountry:     Country{Country: "POLAND"},
		FieldLanguage:    Language{Language: "ENGLISH"},
		FieldGenre:       Genre{Genre: "DRAMA"},
		FieldReview:      Review{Title: "Great", Text: "Loved it", Spoiler: true},
		FieldPhoto:       Photo{StorageID: "p1.jpg", Provider: "local"},
		FieldPoster:      Poster{StorageID: "p2.jpg", Provider: "local"},
	}
	require.Len(t, samples, len(FieldKinds))

	for kind, p := range samples {
		data, err := EncodePayload(p)
		require.NoError(t, err, kind)

		decoded, err := DecodePayload(kind, data)
		require.NoError(t, err, kind)
		assert.Equal(t, p, decoded, kind)
		assert.Equal(t, kind, decoded.Kind())
	}
}

func TestDecodePayloadUnknownKind(t *testing.T) {
	_, err := DecodePayload("DIRECTOR", []byte(`{}`))
	assert.Error(t, err)
}
