package redis

const (
	// KeyAccounts is the hash of account id -> JSON account
	KeyAccounts = "clipper:accounts"
	// KeyAccountOrder is the list of account ids in insertion order
	KeyAccountOrder = "clipper:accounts:order"

	// KeyPrefixPreference is the prefix for scalar preference keys
	KeyPrefixPreference = "clipper:pref:"

	PrefDefaultAccountID      = "defaultAccountId"
	PrefDefaultPluginID       = "defaultPluginId"
	PrefShowQuickResponseCode = "showQuickResponseCode"
	PrefShowLineNumber        = "showLineNumber"
	PrefLiveRendering         = "liveRendering"
)

// AccountsKey returns the Redis key of the account hash
func AccountsKey() string {
	return KeyAccounts
}

// AccountOrderKey returns the Redis key of the account order list
func AccountOrderKey() string {
	return KeyAccountOrder
}

// PreferenceKey returns the Redis key for a scalar preference
func PreferenceKey(name string) string {
	return KeyPrefixPreference + name
}
