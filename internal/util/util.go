package util

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

var Red = color.New(color.FgRed)
var Cyan = color.New(color.FgCyan)
var CyanBold = color.New(color.FgCyan).Add(color.Bold)
var Green = color.New(color.FgGreen)
var GreenBold = color.New(color.FgGreen).Add(color.Bold)
var Magenta = color.New(color.FgMagenta)

func Scanline() string {
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	color.Red("\nInterrupted")
	os.Exit(1)
	return ""
}

// ScanlineTrim : Scans input and trims
func ScanlineTrim() string {
	return strings.TrimSpace(Scanline())
}

// ReadContent reads an HTML file and returns its text
func ReadContent(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", Wrap(FileError, "reading content file", err)
	}
	return string(data), nil
}

// FileStem returns the base name of a path without its extension.
// Dot files keep their name.
func FileStem(filename string) string {
	base := filepath.Base(filename)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}
