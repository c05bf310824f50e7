// Package browser opens URLs in the user's default web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Launcher opens url in a browser. It must not block on the browser process.
type Launcher func(url string) error

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Open opens url in the default browser of the current platform.
func Open(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// command picks the opener for goos.
func command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	}

	switch {
	case commandExists("xdg-open"):
		return exec.Command("xdg-open", url), nil
	case commandExists("open"):
		return exec.Command("open", url), nil
	default:
		return nil, fmt.Errorf("no browser opener found for %s", goos)
	}
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := lookPath(name)
	return err == nil
}
