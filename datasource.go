package schemavault

import "time"

// Datasource describes one reachable database. It is supplied by the
// project/datasource management layer; the core only consumes it to open
// connections and pick the matching extractor and strategy.
type Datasource struct {
	Name           string
	Dialect        Dialect
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	ConnectTimeout time.Duration // zero means the driver default
}
