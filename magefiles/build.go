//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and compiles every package.
func (Build) All() error {
	if err := goTidy(); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}

// Builds the bacon binary into bin/.
func (Build) Binary() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/bacon", "."), withStream())
	return err
}

type Test mg.Namespace

// Runs every test with the race detector on the headless platform.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv(mockNativeEnv+"=1"), withStream())
	return err
}

// Runs go vet over the module.
func (Test) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
