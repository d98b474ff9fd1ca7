package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
	"github.com/ZanzyTHEbar/dagscale/internal/utils"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500 µs"},
		{250 * time.Millisecond, "250 ms"},
		{1500 * time.Millisecond, "1.50 s"},
		{90 * time.Second, "1.50 min"},
		{18 * time.Hour, "18.00 h"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, utils.FormatDuration(tc.in))
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "18.00 min", utils.FormatSeconds(qty.New[qty.Second](1080)))
	assert.Equal(t, 1500*time.Millisecond, utils.Duration(qty.New[qty.Second](1.5)))
	assert.Equal(t, time.Duration(1<<63-1), utils.Duration(qty.New[qty.Second](1e300)))
}

func TestCreateDirIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, utils.CreateDirIfNotExists(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	require.NoError(t, utils.CreateDirIfNotExists(dir))
}
