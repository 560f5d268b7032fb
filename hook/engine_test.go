//go:build amd64 && (linux || freebsd || windows)

package hook

import (
	"math/rand/v2"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/pboyd/detour"
	"github.com/pboyd/detour/proxy"
	"github.com/pboyd/detour/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFingerprint = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

//go:noinline
func memoryUsage(x int) int {
	return x * 1024
}

func newProxiedEngine(t *testing.T) (*Engine, func(int) int) {
	t.Helper()

	db, err := versions.NewDB(versions.Descriptor{
		Name:        "proxied build",
		Platform:    versions.Win32,
		Fingerprint: testFingerprint,
		LoadBase:    0x00400000,
		Hooks: map[string]versions.Locator{
			versions.HookGetMemoryUsage: versions.Proxied{
				Module: versions.ModuleCvGameDatabase,
				Name:   "lGetMemoryUsage",
			},
		},
	})
	require.NoError(t, err)

	variant := versions.DX9
	e, err := New(Options{
		DB:          db,
		Fingerprint: testFingerprint,
		Resolver:    versions.Options{Executable: "CivilizationV.exe", Variant: &variant},
	})
	require.NoError(t, err)

	table, err := proxy.New(versions.ModuleCvGameDatabase, []string{"lGetMemoryUsage"})
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })
	t.Cleanup(func() { e.Close() })
	require.NoError(t, e.AddProxy(table))

	require.NoError(t, table.BindModule(proxy.MapModule{
		"lGetMemoryUsage": reflect.ValueOf(memoryUsage).Pointer(),
	}))

	stub, err := table.Stub("lGetMemoryUsage")
	require.NoError(t, err)
	return e, detour.Func[func(int) int](stub)
}

func TestEngine_Proxied(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	e, call := newProxiedEngine(t)
	assert.True(e.Active())
	assert.Equal("proxied build", e.Descriptor().Name)
	assert.Equal(2048, call(2))

	original, err := RegisterFunc(e, versions.HookGetMemoryUsage, func(x int) int {
		return -x
	})
	require.NoError(err)
	assert.Equal(-2, call(2))
	assert.Equal(2048, original()(2))

	ctx, ok := e.Hook(versions.HookGetMemoryUsage)
	require.True(ok)
	assert.True(ctx.Active())

	// Registering again replaces the earlier replacement.
	_, err = e.Register(versions.HookGetMemoryUsage, func(x int) int {
		return x + 1
	})
	require.NoError(err)
	assert.Equal(3, call(2))
	assert.Equal(2048, original()(2))

	require.NoError(e.Unregister(versions.HookGetMemoryUsage))
	assert.Equal(2048, call(2))
	_, ok = e.Hook(versions.HookGetMemoryUsage)
	assert.False(ok)

	assert.ErrorIs(e.Unregister(versions.HookGetMemoryUsage), detour.ErrUnknownSymbol)
}

func TestEngine_UnknownHook(t *testing.T) {
	e, _ := newProxiedEngine(t)

	_, err := e.Register("NoSuchHook", func() {})
	assert.ErrorIs(t, err, detour.ErrUnknownSymbol)
}

func TestEngine_Tables(t *testing.T) {
	e, _ := newProxiedEngine(t)

	table, err := e.Table(versions.ModuleCvGameDatabase)
	require.NoError(t, err)
	assert.True(t, table.IsBound())

	assert.Error(t, e.AddProxy(table))

	_, err = e.Table("other")
	assert.ErrorIs(t, err, detour.ErrUnknownSymbol)
	assert.ErrorIs(t, e.BindModule("other", "other.dll"), detour.ErrUnknownSymbol)
}

func TestEngine_UnknownVersion(t *testing.T) {
	db, err := versions.NewDB()
	require.NoError(t, err)

	e, err := New(Options{DB: db, Fingerprint: testFingerprint})
	require.NoError(t, err)

	assert.False(t, e.Active())
	assert.Nil(t, e.Descriptor())

	_, err = e.Register(versions.HookGetMemoryUsage, func(x int) int { return x })
	assert.ErrorIs(t, err, detour.ErrUnknownVersion)

	assert.NoError(t, e.Close())
}

func TestEngine_OriginalAfterUnregister(t *testing.T) {
	e, call := newProxiedEngine(t)
	want := reflect.ValueOf(memoryUsage).Pointer()

	ctx, err := e.Register(versions.HookGetMemoryUsage, func(x int) int { return 0 })
	require.NoError(t, err)
	assert.Equal(t, want, ctx.Original())

	require.NoError(t, e.Unregister(versions.HookGetMemoryUsage))
	assert.False(t, ctx.Active())
	assert.Equal(t, want, ctx.Original())
	assert.Equal(t, 2048, detour.Func[func(int) int](ctx.Original())(2))
	assert.Equal(t, 2048, call(2))
}

func TestEngine_RegisterAfterClose(t *testing.T) {
	e, call := newProxiedEngine(t)

	_, err := e.Register(versions.HookGetMemoryUsage, func(x int) int { return -x })
	require.NoError(t, err)

	require.NoError(t, e.Close())
	assert.Equal(t, 2048, call(2))

	_, err = e.Register(versions.HookGetMemoryUsage, func(x int) int { return -x })
	assert.ErrorIs(t, err, detour.ErrClosed)
	assert.Equal(t, 2048, call(2))
	assert.NoError(t, e.Close())
}

func TestEngine_ConcurrentRegisterUnregister(t *testing.T) {
	e, call := newProxiedEngine(t)
	table, err := e.Table(versions.ModuleCvGameDatabase)
	require.NoError(t, err)

	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)

	var wg sync.WaitGroup
	for w := range 4 {
		rng := rand.New(rand.NewPCG(seed, uint64(w)))
		wg.Go(func() {
			for range 100 {
				if rng.IntN(2) == 0 {
					_, err := e.Register(versions.HookGetMemoryUsage, func(x int) int { return -x })
					assert.NoError(t, err)
				} else {
					err := e.Unregister(versions.HookGetMemoryUsage)
					if err != nil {
						assert.ErrorIs(t, err, detour.ErrUnknownSymbol)
					}
				}
			}
		})
	}
	wg.Wait()

	if ctx, ok := e.Hook(versions.HookGetMemoryUsage); ok {
		assert.True(t, ctx.Active())
		assert.Equal(t, 1, table.Depth("lGetMemoryUsage"))
		assert.Equal(t, -2, call(2))
	} else {
		assert.Zero(t, table.Depth("lGetMemoryUsage"))
		assert.Equal(t, 2048, call(2))
	}
}
