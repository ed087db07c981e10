// Package config defines the format-agnostic driver configuration model
// and the Loader interface concrete formats implement. Keeping the model
// free of format details lets the rest of the driver stay ignorant of how
// configuration was expressed.
package config
