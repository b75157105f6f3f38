package rooted

// Version information for the rootedsync library.
const (
	// Version is the current library version.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the library.
type Info struct {
	// Version is the library version string.
	Version string

	// AffinityChecks indicates whether the goroutine-affinity assertion
	// is currently enabled.
	AffinityChecks bool
}

// GetInfo returns information about the library and its runtime toggles.
//
// Example:
//
//	info := rooted.GetInfo()
//	fmt.Printf("rootedsync %s (affinity checks: %v)\n", info.Version, info.AffinityChecks)
func GetInfo() Info {
	return Info{
		Version:        Version,
		AffinityChecks: affinityChecks.Load(),
	}
}
