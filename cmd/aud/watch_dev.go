//go:build dev

package main

func init() {
	devMode = true
}
