// Package internal holds name helpers shared by the converter packages.
package internal

import (
	"regexp"
	"strings"
)

const (
	// A valid name must start with a letter, digit or underscore.
	// It may contain any character after that except control and slash.
	pattern = `^[\pL\pN_][^\pC/]*$`
	// It may not end with a whitespace character, or be a reserved word.
	antiPattern = `(\pZ|^(u?byte|char|string|u?short|u?int|u?int64|uint64|float|double|enum|opaque|compound))$`
	// Characters allowed after the first position.
	tailPattern = `^[^\pC/]$`
)

var (
	re     *regexp.Regexp
	antiRe *regexp.Regexp
	tailRe *regexp.Regexp
)

func init() {
	var err error
	re, err = regexp.Compile(pattern)
	if err != nil {
		panic(err)
	}
	antiRe, err = regexp.Compile(antiPattern)
	if err != nil {
		panic(err)
	}
	tailRe, err = regexp.Compile(tailPattern)
	if err != nil {
		panic(err)
	}
}

// IsValidNetCDFName returns true if name is a valid NetCDF name.
func IsValidNetCDFName(name string) bool {
	return re.MatchString(name) && !antiRe.MatchString(name)
}

// CleanName rewrites a legacy variable or attribute name so that it is a
// valid NetCDF name. Disallowed characters become underscores and reserved
// words get an underscore appended. A name with nothing salvageable comes
// back as a single underscore.
func CleanName(name string) string {
	if IsValidNetCDFName(name) {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		s := string(r)
		ok := tailRe.MatchString(s)
		if i == 0 {
			ok = re.MatchString(s)
		}
		if ok {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	cleaned := strings.TrimRight(b.String(), " \t")
	if cleaned == "" || !re.MatchString(cleaned) {
		cleaned = "_" + cleaned
	}
	if antiRe.MatchString(cleaned) {
		cleaned = cleaned + "_"
	}
	return cleaned
}
