package versions

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Fingerprint returns the lowercase hex SHA-256 of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SelfFingerprint fingerprints the running executable.
func SelfFingerprint() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return Fingerprint(exe)
}

// DetectVariant guesses the variant of a build from its executable name.
// Only Windows ships more than one executable per build.
func DetectVariant(platform Platform, exe string) Variant {
	if platform != Win32 {
		return Generic
	}

	name := strings.ToLower(filepath.Base(exe))
	switch {
	case strings.Contains(name, "dx11"):
		return DX11
	case strings.Contains(name, "tablet"):
		return Tablet
	default:
		return DX9
	}
}
