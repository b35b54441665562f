// Package config holds the sitescout configuration model.
//
// Configuration flows one way: the CLI builds a Config from flags and the
// optional .sitescout YAML file, validates it once, and passes it down by
// dependency injection. There is no process-wide mutable configuration.
package config
