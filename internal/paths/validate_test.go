package paths

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSyntax_Windows(t *testing.T) {
	valid := []string{
		`C:\SalesDash\data`,
		`c:/salesdash/logs`,
		`data\local`,
		`\\fileserver\share\salesdash`,
		`\\?\C:\very\long\path`,
		`D:\reports\CONSOLE`,   // only exact device names are reserved
		`D:\reports\com10`,     // COM10 is not a device
		`D:\reports\..\backup`, // dot segments are allowed
	}
	for _, p := range valid {
		assert.NoError(t, ValidateSyntax("windows", p), p)
	}

	invalid := []string{
		`C:\data\CON`,
		`C:\data\nul.txt`,
		`C:\data\Lpt1`,
		`C:\data\report?.db`,
		`C:\data\a<b`,
		`C:\data\a|b`,
		`C:\data\C:\again`,
		`C:\data\trailing.`,
		`C:\data\trailing `,
		"C:\\data\\tab\tname",
		"C:\\data\x00",
		``,
		`   `,
	}
	for _, p := range invalid {
		assert.Error(t, ValidateSyntax("windows", p), "%q", p)
	}
}

func TestValidateSyntax_POSIX(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		assert.NoError(t, ValidateSyntax(goos, "/srv/sales:dash/data?"), goos)
		assert.NoError(t, ValidateSyntax(goos, "relative/CON"), goos)
		assert.Error(t, ValidateSyntax(goos, "/srv/\x00/data"), goos)
		assert.Error(t, ValidateSyntax(goos, "/srv/"+strings.Repeat("a", 256)), goos)
		assert.Error(t, ValidateSyntax(goos, ""), goos)
	}
	assert.Error(t, ValidateSyntax("darwin", "/srv/\xff"))
	assert.NoError(t, ValidateSyntax("linux", "/srv/\xff"))
}

func TestWindowsVolume(t *testing.T) {
	cases := map[string]string{
		`C:\x`:                `C:`,
		`c:`:                  `c:`,
		`\\srv\share\dir`:     `\\srv\share`,
		`//srv/share`:         `//srv/share`,
		`\\?\D:\x`:            `\\?\D:`,
		`relative\dir`:        ``,
		`\rooted\no\volume`:   ``,
		`1:\not\a\drive\name`: ``,
	}
	for in, want := range cases {
		assert.Equal(t, want, windowsVolume(in), in)
	}
}

func TestWithin(t *testing.T) {
	j := filepath.FromSlash
	assert.True(t, within(j("/a/b"), j("/a/b/c")))
	assert.True(t, within(j("/a/b"), j("/a/b")))
	assert.True(t, within(j("/a/b/"), j("/a/b/c/")))
	assert.True(t, within(j("/"), j("/a")))
	assert.False(t, within(j("/a/b"), j("/a/bc")))
	assert.False(t, within(j("/a/b"), j("/a")))
	assert.False(t, within(j("/a/b"), j("/a/b/../c")))
	// No case folding, whatever the platform.
	assert.False(t, within(j("/a/b"), j("/a/B/c")))
}
