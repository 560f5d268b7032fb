//go:build darwin

package detour

// Darwin has no way to refuse a taken address without replacing it, so the
// address stays a hint and AllocateNear checks where the mapping landed.
const mapExact = 0
