package utils

import "time"

const isoLikeLayout = "2006-01-02 15:04:05"

// FormatEpochMillis renders epoch milliseconds as "yyyy-MM-dd HH:mm:ss" in UTC.
func FormatEpochMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLikeLayout)
}
