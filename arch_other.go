//go:build !amd64

package detour

const nativeX86 = false
