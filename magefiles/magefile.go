//go:build mage

// Package main contains Mage build targets for imagefinder developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "imagefinder"
	cmdPkg  = "./cmd/imagefinder"
)

// Default target when running mage without arguments.
var Default = Build

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// E2E runs the pty-driven end-to-end tests against a freshly built binary.
func E2E() error {
	return sh.RunV("go", "test", "-tags", "e2e", "-count=1", "./e2e/...")
}

// Lint runs go vet, including the e2e build tag.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "vet", "-tags", "e2e", "./e2e/...")
}

// Check runs lint, unit and end-to-end tests.
func Check() {
	mg.SerialDeps(Lint, Test, E2E)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
