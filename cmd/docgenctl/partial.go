package main

import "github.com/GraceHermine/GenerateurDocument/internal/config"

// loadPartial fills v, a struct holding a subset of the configuration
// sections, without validating the sections the command does not need.
func loadPartial(v any) error {
	return config.ReadInto(v)
}
