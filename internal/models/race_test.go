package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestNewAugmentSlots(t *testing.T) {
	tests := []struct {
		name     string
		augments []*string
		expected AugmentSlots
	}{
		{
			name:     "nil list leaves all slots empty",
			augments: nil,
			expected: AugmentSlots{},
		},
		{
			name:     "empty list leaves all slots empty",
			augments: []*string{},
			expected: AugmentSlots{},
		},
		{
			name:     "one augment fills the cpu slot only",
			augments: []*string{strPtr("GX-1")},
			expected: AugmentSlots{CPU: strPtr("GX-1")},
		},
		{
			name:     "two augments leave the hydraulic slot empty",
			augments: []*string{strPtr("GX-1"), strPtr("RM-2")},
			expected: AugmentSlots{CPU: strPtr("GX-1"), RAM: strPtr("RM-2")},
		},
		{
			name:     "three augments fill every slot",
			augments: []*string{strPtr("GX-1"), strPtr("RM-2"), strPtr("HY-3")},
			expected: AugmentSlots{CPU: strPtr("GX-1"), RAM: strPtr("RM-2"), Hydraulic: strPtr("HY-3")},
		},
		{
			name:     "extra entries are dropped",
			augments: []*string{strPtr("GX-1"), strPtr("RM-2"), strPtr("HY-3"), strPtr("XX-4")},
			expected: AugmentSlots{CPU: strPtr("GX-1"), RAM: strPtr("RM-2"), Hydraulic: strPtr("HY-3")},
		},
		{
			name:     "nil entries stay nil in place",
			augments: []*string{nil, strPtr("RM-2"), nil},
			expected: AugmentSlots{RAM: strPtr("RM-2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewAugmentSlots(tt.augments))
		})
	}
}

func TestNewAugmentTriggers(t *testing.T) {
	tests := []struct {
		name      string
		triggered []bool
		expected  AugmentTriggers
	}{
		{
			name:      "nil list means nothing fired",
			triggered: nil,
			expected:  AugmentTriggers{},
		},
		{
			name:      "single trigger pads the rest with false",
			triggered: []bool{true},
			expected:  AugmentTriggers{CPU: true},
		},
		{
			name:      "full list maps slot for slot",
			triggered: []bool{false, true, true},
			expected:  AugmentTriggers{RAM: true, Hydraulic: true},
		},
		{
			name:      "extra entries are dropped",
			triggered: []bool{true, true, true, true},
			expected:  AugmentTriggers{CPU: true, RAM: true, Hydraulic: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewAugmentTriggers(tt.triggered))
		})
	}
}
