// Intercept functions inside the running process
//
// Package detour redirects the entry point of a function in the current
// process to a replacement and keeps a callable copy of the original
// behaviour (a trampoline). The functions being patched don't need symbols
// or source: the caller supplies the address (see the versions package) and
// the number of prologue bytes that are safe to move.
//
// A patch overwrites the first five bytes of the target with a JMP rel32.
// The moved prologue is copied into a block allocated within ±2GiB of the
// target, PC-relative operands are adjusted, and a jump back to the rest of
// the function is appended.
//
// Limitations:
//   - Only supports amd64
//   - Linux is the main target. Windows and the BSDs work with reduced
//     protection tracking.
//   - A thread already running inside the patched bytes may see a torn
//     instruction while the redirect is written. The write is a single
//     aligned store whenever the five bytes fit in one quadword.
//   - Replacement functions must match the calling convention of the
//     original. Nothing checks this for raw addresses.
package detour
