package config

// Lua schema field names and globals
const (
	luaGlobalZksvm        = "zksvm"
	luaFieldDataDir       = "data_dir"
	luaFieldTimeout       = "request_timeout"
	luaFieldKeyring       = "keyring"
	luaFieldLogLevel      = "log_level"
	luaFieldFallbackBase  = "fallback_base"
)

// Environment variables
const (
	// EnvConfigFile overrides the config file location.
	EnvConfigFile = "ZKSVM_CONFIG"
	// EnvDataDir overrides the data directory from any source.
	EnvDataDir = "ZKSVM_DATA_DIR"
)

const (
	appName        = "zksvm"
	configFileName = "zksvm.lua"
	// legacyDataDir is used when it already exists in the home directory.
	legacyDataDir = ".zksvm"
	// maxConfigSize bounds the config file read.
	maxConfigSize = 1 << 20
)
