package main

// User-facing command text, kept together so wording stays consistent.
const (
	MsgRootShort = "Modular top file management for states and pillars"
	MsgRootLong  = `topd discovers top files across environment roots, toggles them through
control-directory symlinks, and merges the enabled set into a single top
document.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file path (default is $XDG_CONFIG_HOME/topd/topd.toml)"
	MsgFlagSaltenv = "Restrict to an environment (repeatable)"
	MsgFlagPillar  = "Operate on pillar roots instead of file roots"

	MsgStatusShort    = "Show enabled and disabled top files"
	MsgTopsShort      = "List the logical names of all discovered top files"
	MsgEnabledShort   = "List enabled top files"
	MsgDisabledShort  = "List disabled top files"
	MsgEnableShort    = "Enable top files by logical name"
	MsgDisableShort   = "Disable top files by logical name"
	MsgTopShort       = "Render and merge the enabled top files"
	MsgMergeShort     = "Render and merge the main top file per the merging strategy"
	MsgReportShort    = "Show every known path representation for matching files"
	MsgGenconfigShort = "Print a commented default configuration"
)
