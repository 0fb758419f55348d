//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed in a window.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	_, err := executeCmd("go", withArgs("run", ".", "run"), withStream())
	return err
}

// Runs the testbed without a window or audio device.
func (Run) Headless() error {
	mg.Deps(Build.All)
	fmt.Println("Run headless testbed...")
	_, err := executeCmd("go", withArgs("run", ".", "run", "--headless", "--fps", "30"), withEnv(mockNativeEnv+"=1"), withStream())
	return err
}
