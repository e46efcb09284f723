package cache

import "time"

type QueryOpts struct {
	Type    string
	Since   time.Time
	Sources []string
	Search  string
	Limit   int
}
