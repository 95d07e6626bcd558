package fnassist

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort         = "Look after a sideloaded Fortnite install on macOS"
	MsgContainersShort   = "List and delete the game's sandbox containers"
	MsgContainersLsShort = "List the game's containers"
	MsgContainersRmShort = "Delete a container from disk"
	MsgRelocateShort     = "Move the game data to another folder and link it back"
	MsgResetShort        = "Move relocated game data back into its container"
	MsgWhereShort        = "Show where the game data lives"
	MsgNormalizeShort    = "Rename the installed app bundle to its canonical name"
	MsgOpenShort         = "Normalize and launch the app bundle"
	MsgDeleteAppShort    = "Delete the installed app bundle"
	MsgPatchShort        = "Install the provisioning profile into the app bundle"
	MsgDownloadShort     = "List or download builds from the community feed"
	MsgUpdateCheckShort  = "Check whether a newer fnassist release exists"
	MsgArchiveInfoShort  = "Show the latest archived game files"
	MsgImportShort       = "Import game assets from an archive or folder"
	MsgAccessShort       = "Check for Full Disk Access"
	MsgConfigShort       = "Inspect and initialise configuration"
	MsgConfigInitShort   = "Write the effective configuration to the config file"
	MsgConfigShowShort   = "Print the effective configuration"
	MsgVersionShort      = "Print version information"
	MsgCompletionShort   = "Generate shell completion script"
	MsgManShort          = "Generate man pages"

	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat       = "Output format: auto, term, text, json or yaml"
	MsgFlagConfigDir    = "Directory holding config.toml or config.yaml"
	MsgFlagNotify       = "Send a desktop notification when long operations finish"
	MsgFlagYes          = "Answer yes to every confirmation"
	MsgFlagAssumeAccess = "Skip the Full Disk Access probe"
	MsgFlagPick         = "With --yes, pick the Nth container when several exist"
	MsgFlagSubpath      = "Part of the container to relocate (relocation.symlink_subpath)"
	MsgFlagPolicy       = "What to do with data already in the target: replace or backup"
	MsgFlagStrict       = "Refuse targets holding anything but the relocated folder"
	MsgFlagEntitlements = "Also add the extended memory entitlements to the profile"
	MsgFlagOut          = "Directory downloads are written to"
	MsgFlagForce        = "Overwrite an existing config file"

	MsgCancelled        = "Nothing selected, cancelled."
	MsgNoContainers     = "No game containers found. Launch the game once so macOS creates one."
	MsgNotRelocated     = "Game data is not relocated, nothing to reset."
	MsgDataReset        = "Game data moved back into %s"
	MsgContainerDeleted = "Deleted %s"
	MsgUpToDate         = "fnassist %s is up to date"
	MsgNoArchive        = "No archive information available."
	MsgConfigWritten    = "Configuration written to %s"
	MsgAccessGranted    = "Full Disk Access is available."
	MsgManWritten       = "Man pages written to %s"
	MsgOpened           = "Opened %s"
	MsgDownloaded       = "Downloaded %s"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/relocate-long.txt
	msgRelocateLongRaw string
	MsgRelocateLong    = strings.TrimSpace(msgRelocateLongRaw)

	//go:embed msgs/relocate-example.txt
	msgRelocateExampleRaw string
	MsgRelocateExample    = strings.TrimRight(msgRelocateExampleRaw, "\n")

	//go:embed msgs/import-long.txt
	msgImportLongRaw string
	MsgImportLong    = strings.TrimSpace(msgImportLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
