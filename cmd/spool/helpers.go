package main

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelCaser = cases.Title(language.English)

// titleLabel turns a lowercase field name into a display heading.
func titleLabel(s string) string {
	return labelCaser.String(s)
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
