package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldKindForms(t *testing.T) {
	for _, kind := range FieldKinds {
		got, ok := ParseFieldKind(string(kind))
		require.True(t, ok, kind)
		assert.Equal(t, kind, got)

		got, ok = ParseFieldKind(kind.PathSegment())
		require.True(t, ok, kind.PathSegment())
		assert.Equal(t, kind, got)
	}

	_, ok := ParseFieldKind("director")
	assert.False(t, ok)
	_, ok = ParseFieldKind("")
	assert.False(t, ok)
}

func TestPathSegment(t *testing.T) {
	assert.Equal(t, "other-title", FieldOtherTitle.PathSegment())
	assert.Equal(t, "box-office", FieldBoxOffice.PathSegment())
	assert.Equal(t, "genre", FieldGenre.PathSegment())
}

func TestPermissionSetAllows(t *testing.T) {
	empty := PermissionSet{}
	assert.False(t, empty.Allows(FieldGenre))

	perKind := PermissionSet{Permission(FieldGenre)}
	assert.True(t, perKind.Allows(FieldGenre))
	assert.False(t, perKind.Allows(FieldReview))

	all := PermissionSet{PermissionAll}
	for _, kind := range FieldKinds {
		assert.True(t, all.Allows(kind), kind)
	}
}

func TestPermissionSetNames(t *testing.T) {
	assert.Equal(t, []string{}, PermissionSet(nil).Names())
	assert.Equal(t, []string{"ALL", "GENRE"}, PermissionSet{PermissionAll, Permission(FieldGenre)}.Names())
}
