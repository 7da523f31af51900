package main

// Command descriptions
const (
	MsgRootShort    = "Manage zksolc compiler versions"
	MsgRootLong     = "zksvm installs zksolc compiler releases into per-version directories and tracks the global default version."
	MsgInstallShort = "Install one or more zksolc versions"
	MsgListShort    = "List installed and available versions"
	MsgUseShort     = "Set the global zksolc version"
	MsgRemoveShort  = "Remove a version, or all versions"

	MsgFlagVerbose = "Increase verbosity (-v, -vv, -vvv)"
	MsgFlagYes     = "Answer yes to every prompt"
	MsgFlagOutput  = "Output format: text, json or yaml"
)

// Status messages
const (
	MsgInstalling          = "Installing zksolc %s"
	MsgInstalled           = "Installed zksolc %s in %s"
	MsgAlreadyInstalled    = "zksolc %s is already installed"
	MsgGlobalSet           = "Global version set to %s"
	MsgGlobalUnset         = "Global version unset"
	MsgPromptSetGlobal     = "Set zksolc %s as the global version?"
	MsgPromptInstall       = "zksolc %s is not installed. Install it now?"
	MsgPromptRemoveAll     = "Remove all %d installed versions?"
	MsgRemoved             = "Removed zksolc %s"
	MsgRemovedAll          = "Removed %d versions"
	MsgNothingInstalled    = "No versions installed"
	MsgNothingToRemove     = "Nothing to remove"
	MsgAborted             = "Aborted"
	MsgInstalledHeader     = "Installed versions:"
	MsgAvailableHeader     = "Available versions:"
	MsgCurrentMarker       = " (current)"
	MsgNotInstalledWarning = "zksolc %s is not installed"
	MsgNonInteractive      = "not a terminal, assuming no (use --yes to confirm)"
)
