//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Plan builds vega and generates a test plan for pdf with the default provider.
func Plan(pdf string) error {
	mg.Deps(Build)
	fmt.Printf("[plan] %s\n", pdf)
	return sh.RunV(filepath.Join(binDir, binName), "generate", pdf)
}

// Providers lists the providers the built binary supports.
func Providers() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "providers")
}
