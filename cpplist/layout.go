package cpplist

import (
	"unsafe"

	"github.com/pboyd/detour/versions"
)

// Layout is the memory layout of a foreign std::list.
type Layout int

const (
	// Itanium is the layout of libstdc++ and libc++. A link is {prev, next}
	// and the root of a list is its sentinel node, whose data holds the
	// int32 length.
	Itanium Layout = iota

	// MSVC is the layout of the Microsoft runtime. A link is {next, prev}
	// and the root is a header {uint32 reserved, *sentinel, int32 length}.
	MSVC
)

// LayoutFor returns the layout used by binaries built for p.
func LayoutFor(p versions.Platform) Layout {
	if p == versions.Win32 {
		return MSVC
	}
	return Itanium
}

func (l Layout) String() string {
	switch l {
	case Itanium:
		return "Itanium"
	case MSVC:
		return "MSVC"
	}
	return "unknown"
}

const (
	ptrSize  = unsafe.Sizeof(uintptr(0))
	linkSize = 2 * ptrSize

	// MSVC header field offsets.
	headerSentinel = ptrSize
	headerLength   = 2 * ptrSize
	headerSize     = 3 * ptrSize
)

func word(addr uintptr) *uintptr {
	return (*uintptr)(unsafe.Pointer(addr))
}

func nextField(l Layout) uintptr {
	if l == MSVC {
		return 0
	}
	return ptrSize
}

func prevField(l Layout) uintptr {
	if l == MSVC {
		return ptrSize
	}
	return 0
}

func (l Layout) next(link uintptr) uintptr {
	return *word(link + nextField(l))
}

func (l Layout) prev(link uintptr) uintptr {
	return *word(link + prevField(l))
}

func (l Layout) setNext(link, v uintptr) {
	*word(link + nextField(l)) = v
}

func (l Layout) setPrev(link, v uintptr) {
	*word(link + prevField(l)) = v
}

// data returns the address of the element stored in node.
func data(node uintptr) uintptr {
	return node + linkSize
}

// nodeSize is the size of a node holding an element of elemSize bytes.
func nodeSize(elemSize uintptr) int {
	return int(linkSize + elemSize)
}

// sentinel returns the sentinel node of the list at root.
func (l Layout) sentinel(root uintptr) uintptr {
	if l == MSVC {
		return *word(root + headerSentinel)
	}
	return root
}

func (l Layout) length(root uintptr) *int32 {
	if l == MSVC {
		return (*int32)(unsafe.Pointer(root + headerLength))
	}
	return (*int32)(unsafe.Pointer(data(root)))
}

// initSentinel makes node an empty circular list.
func (l Layout) initSentinel(node uintptr) {
	l.setNext(node, node)
	l.setPrev(node, node)
}

// newRoot allocates an empty list.
func (l Layout) newRoot(alloc Allocator) (uintptr, error) {
	if l == MSVC {
		header, err := alloc.Alloc(int(headerSize))
		if err != nil {
			return 0, err
		}
		node, err := alloc.Alloc(nodeSize(0))
		if err != nil {
			alloc.Free(header)
			return 0, err
		}
		l.initSentinel(node)

		*(*uint32)(unsafe.Pointer(header)) = 0
		*word(header + headerSentinel) = node
		*l.length(header) = 0
		return header, nil
	}

	node, err := alloc.Alloc(nodeSize(unsafe.Sizeof(int32(0))))
	if err != nil {
		return 0, err
	}
	l.initSentinel(node)
	*l.length(node) = 0
	return node, nil
}

// linkBefore inserts node ahead of at.
func (l Layout) linkBefore(node, at uintptr) {
	last := l.prev(at)
	l.setPrev(node, last)
	l.setNext(node, at)
	l.setNext(last, node)
	l.setPrev(at, node)
}

// freeRoot releases every node, the sentinel and the header, if any.
func (l Layout) freeRoot(root uintptr, alloc Allocator) {
	s := l.sentinel(root)
	for node := l.next(s); node != s; {
		next := l.next(node)
		alloc.Free(node)
		node = next
	}
	alloc.Free(s)

	if l == MSVC {
		alloc.Free(root)
	}
}
