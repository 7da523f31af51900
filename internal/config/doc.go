// Package config loads the zksvm configuration from a sandboxed Lua file.
//
// The file lives at $ZKSVM_CONFIG or <XDG config home>/zksvm/zksvm.lua and is
// optional. It must assign a global zksvm table:
//
//	zksvm = {
//	    data_dir = "~/.zksvm",
//	    request_timeout = 120,          -- seconds
//	    keyring = "~/.config/zksvm/release-keys.asc",
//	    log_level = "info",
//	    fallback_base = "https://mirror.example/zksolc",
//	}
//
// The detected platform is available as a read-only table, so values can be
// computed per host:
//
//	zksvm = {
//	    request_timeout = platform.is_windows and 300 or 120,
//	}
//
// The VM has no os, io, debug or module loading functions. $ZKSVM_DATA_DIR
// overrides data_dir.
package config
