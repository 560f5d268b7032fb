//go:build linux || freebsd || windows

package hook_test

import (
	"encoding/json"
	"fmt"

	"github.com/pboyd/detour/hook"
)

func ExampleOriginal() {
	hook.Redefine(json.Marshal, func(v any) ([]byte, error) {
		// Pass strings through
		if _, ok := v.(string); ok {
			return hook.Original(json.Marshal)(v)
		}

		return []byte(`{"nah": true}`), nil
	})
	defer hook.Restore(json.Marshal)

	buf, _ := json.Marshal("A string")
	fmt.Println(string(buf))

	buf, _ = json.Marshal(123)
	fmt.Println(string(buf))
	// Output:
	// "A string"
	// {"nah": true}
}
