package config

import "context"

// Loader abstracts the configuration format from the rest of the driver.
// Implementations load zero or more files and return a merged model with
// defaults applied.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
