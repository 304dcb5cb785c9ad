//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run groups targets that run pipeline stages through the built binary.
type Run mg.Namespace

// Extract scrapes LinkedIn for person (a configured name or ALL).
func (Run) Extract(person string) error {
	ensureBuilt()
	return sh.RunV(binPath(), "extract", "--person", person)
}

// Process generates text responses for person.
func (Run) Process(person string) error {
	ensureBuilt()
	return sh.RunV(binPath(), "process", "--person", person)
}

// Portrait generates portrait images for person.
func (Run) Portrait(person string) error {
	ensureBuilt()
	return sh.RunV(binPath(), "portrait", "--person", person)
}

// Pipeline runs all three stages for person in order, stopping at the
// first failing stage.
func (r Run) Pipeline(person string) error {
	for _, stage := range []func(string) error{r.Extract, r.Process, r.Portrait} {
		if err := stage(person); err != nil {
			return err
		}
	}
	return nil
}
