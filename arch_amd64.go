package detour

// nativeX86 reports whether this process executes the x86-64 code the
// patcher writes.
const nativeX86 = true
