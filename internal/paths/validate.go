package paths

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	windowsReservedChars = `<>:"|?*`
	posixNameMax         = 255
	windowsPathMax       = 32767
)

var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	"CONIN$": {}, "CONOUT$": {},
}

// ValidateSyntax reports whether p could name a directory or file on goos.
// It never rewrites p; a path that needs fixing is an error.
func ValidateSyntax(goos, p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("empty path")
	}
	if strings.IndexByte(p, 0) >= 0 {
		return errors.New("contains NUL byte")
	}
	if goos == "windows" {
		return validateWindows(p)
	}
	return validatePOSIX(goos, p)
}

func validatePOSIX(goos, p string) error {
	for _, elem := range strings.Split(p, "/") {
		if len(elem) > posixNameMax {
			return fmt.Errorf("component %.20q... longer than %d bytes", elem, posixNameMax)
		}
	}
	// APFS and HFS+ store names as UTF-8 and reject anything else.
	if goos == "darwin" && !utf8.ValidString(p) {
		return errors.New("not valid UTF-8")
	}
	return nil
}

func validateWindows(p string) error {
	if len(p) > windowsPathMax {
		return fmt.Errorf("longer than %d characters", windowsPathMax)
	}
	vol := windowsVolume(p)
	rest := p[len(vol):]

	elems := strings.FieldsFunc(rest, func(r rune) bool { return r == '\\' || r == '/' })
	for _, elem := range elems {
		if elem == "." || elem == ".." {
			continue
		}
		for _, c := range elem {
			if c < 0x20 {
				return fmt.Errorf("component %q contains control character %#x", elem, c)
			}
			if strings.ContainsRune(windowsReservedChars, c) {
				return fmt.Errorf("component %q contains reserved character %q", elem, c)
			}
		}
		if strings.HasSuffix(elem, " ") || strings.HasSuffix(elem, ".") {
			return fmt.Errorf("component %q ends with a space or period", elem)
		}
		stem := elem
		if i := strings.IndexByte(stem, '.'); i >= 0 {
			stem = stem[:i]
		}
		if _, ok := windowsReservedNames[strings.ToUpper(strings.TrimRight(stem, " "))]; ok {
			return fmt.Errorf("component %q is a reserved device name", elem)
		}
	}
	return nil
}

// windowsVolume returns the leading drive ("C:") or UNC share
// (`\\server\share`) of p, or "".  The `\\?\` long-path prefix is kept with
// the volume it introduces.
func windowsVolume(p string) string {
	isSep := func(c byte) bool { return c == '\\' || c == '/' }

	if len(p) >= 4 && isSep(p[0]) && isSep(p[1]) && (p[2] == '?' || p[2] == '.') && isSep(p[3]) {
		return p[:4] + windowsVolume(p[4:])
	}
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return p[:2]
	}
	if len(p) >= 2 && isSep(p[0]) && isSep(p[1]) {
		// \\server\share
		n, seps := 2, 0
		for ; n < len(p); n++ {
			if isSep(p[n]) {
				seps++
				if seps == 2 {
					break
				}
			}
		}
		return p[:n]
	}
	return ""
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
