package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefreshAllowed(t *testing.T) {
	for name, tc := range map[string]struct {
		book       Book
		allowed    bool
		wantReason string
	}{
		"out of stock": {
			book:       Book{BookPublic: BookPublic{IsAllowedToBorrow: true}},
			wantReason: ReasonNoStock,
		},
		"back in stock": {
			book:    Book{BookPublic: BookPublic{ReasonOfDisallowed: ReasonNoStock}, BookInventory: BookInventory{Stock: 1}},
			allowed: true,
		},
		"closed by hand": {
			book:       Book{BookPublic: BookPublic{ManuallyDisallowed: true, ReasonOfDisallowed: "damaged"}, BookInventory: BookInventory{Stock: 3}},
			wantReason: "damaged",
		},
	} {
		t.Run(name, func(t *testing.T) {
			b := tc.book
			b.RefreshAllowed()
			require.Equal(t, tc.allowed, b.IsAllowedToBorrow)
			require.Equal(t, tc.wantReason, b.ReasonOfDisallowed)
		})
	}
}
