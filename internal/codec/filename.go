package codec

import (
	"fmt"
	"strings"
	"time"
)

// Filename returns the canonical snapshot filename for a site and collection
// time: <site-or-default>_<YYYYMMDD>_<HHMMSS>.<ext>.
func Filename(site string, collectedAt time.Time, enc Encoding) string {
	return fmt.Sprintf("%s_%s%s",
		sanitizeSite(site),
		collectedAt.UTC().Format("20060102_150405"),
		enc.Ext(),
	)
}

// sanitizeSite makes a site name safe for use in filenames and object keys.
// An empty site (the server default site) becomes "default".
func sanitizeSite(site string) string {
	if site == "" {
		return "default"
	}
	replacer := strings.NewReplacer(
		" ", "_", "/", "_", "\\", "_", ":", "_",
		"*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(site)
}
