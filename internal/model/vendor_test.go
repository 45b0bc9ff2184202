package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusRequested, StatusPending, true},
		{StatusRequested, StatusValidated, true},
		{StatusRequested, StatusDenied, true},
		{StatusPending, StatusValidated, true},
		{StatusPending, StatusDenied, true},
		{StatusPending, StatusRequested, false},
		{StatusValidated, StatusDenied, false},
		{StatusValidated, StatusPending, false},
		{StatusDenied, StatusValidated, false},
		{StatusRequested, StatusRequested, false},
		{"unknown", StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestVendorCategoriesFixedSet(t *testing.T) {
	assert.Len(t, VendorCategories, 10)
	assert.True(t, VendorCategories["logistics"])
	assert.True(t, VendorCategories["other"])
	assert.False(t, VendorCategories["farming"])
}
