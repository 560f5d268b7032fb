package versions

// Hook names used by the shipped descriptors.
const (
	HookGetMemoryUsage      = "lGetMemoryUsage"
	HookSetActiveDLCAndMods = "SetActiveDLCAndMods"
)

// ModuleCvGameDatabase is the database module wrapped by a forwarding table
// on Windows.
const ModuleCvGameDatabase = "CvGameDatabase"

// Default holds the builds the engine knows about.
var Default = mustDB(
	Descriptor{
		Name:        "Civilization V / 1.0.3.279 / Win32 + Steam",
		Platform:    Win32,
		Fingerprint: "f95637398ce10012c785b0dc952686db82613f702a8511bbc7ac822896949563",
		LoadBase:    0x00400000,
		Hooks: map[string]Locator{
			HookGetMemoryUsage: Proxied{
				Module: ModuleCvGameDatabase,
				Name:   "?lGetMemoryUsage@Lua@Scripting@Database@@SAHPAUlua_State@@@Z",
			},
			HookSetActiveDLCAndMods: StaticOffset{Offsets: map[Variant]Offset{
				DX9:    {Addr: 0x006CD160, Size: 6},
				DX11:   {Addr: 0x006B8E50, Size: 6},
				Tablet: {Addr: 0x0065DC10, Size: 6},
			}},
		},
	},
	Descriptor{
		Name:        "Civilization V / 1.0.3.279 / Linux + Steam",
		Platform:    Linux,
		Fingerprint: "cc06b647821ec5e7cca3c397f6b0d4726f0106cdd67bcf074d494bea2607a8ca",
		Relocatable: true,
		Hooks: map[string]Locator{
			HookGetMemoryUsage: Exported{
				Name: "_ZN8Database9Scripting3Lua15lGetMemoryUsageEP9lua_State",
				Size: 7,
			},
			HookSetActiveDLCAndMods: Exported{
				Name: "_ZN25CvModdingFrameworkAppSide19SetActiveDLCandModsERK22cvContentPackageIDListRKNSt3__14listIN15ModAssociations7ModInfoENS3_9allocatorIS6_EEEEbb",
				Size: 10,
			},
		},
	},
)

func mustDB(descs ...Descriptor) *DB {
	db, err := NewDB(descs...)
	if err != nil {
		panic(err)
	}
	return db
}
