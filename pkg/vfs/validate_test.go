package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/a/b/c.txt", true},
		{"a/b", true},
		{"/a//b/", true},
		{"/spaces are fine/ü.txt", true},
		{"", false},
		{"/a/../b", false},
		{"/a/./b", false},
		{"..", false},
		{"/a\x00b", false},
		{"/a\nb", false},
		{`/a\b`, false},
		{"/a<b", false},
		{"/a>b", false},
		{"/a:b", false},
		{`/a"b`, false},
		{"/a|b", false},
		{"/a?b", false},
		{"/a*b", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePath(tt.path))
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("report.pdf"))
	for _, bad := range []string{"", ".", "..", "a/b", "a?b", "tab\tname"} {
		err := ValidateName(bad)
		assert.True(t, vfserrors.IsInvalidInput(err), "ValidateName(%q) = %v", bad, err)
	}
}
