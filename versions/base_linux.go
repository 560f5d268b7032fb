package versions

import (
	"fmt"

	"github.com/pboyd/detour/internal/procmaps"
)

func moduleBase(path string) (uintptr, error) {
	maps, err := procmaps.Read()
	if err != nil {
		return 0, err
	}

	base, ok := procmaps.Base(maps, path)
	if !ok {
		return 0, fmt.Errorf("%s is not mapped", path)
	}
	return base, nil
}
