package logger

// Output categories control WHAT the CLI prints at each verbosity level,
// independent of log severity.
//
//	0 (default) - results, errors with hints, final status
//	1 (-v)      - + startup banner details, storage status
//	2 (-vv)     - + parse timing, loaded config files
//	3 (-vvv)    - + parser stage output

// OutputCategory is a kind of CLI output that can be enabled or disabled
type OutputCategory int

const (
	OutputResults OutputCategory = iota
	OutputErrors
	OutputUserStatus

	OutputStartup
	OutputStorage

	OutputTiming
	OutputConfig

	OutputStages
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputStartup: VerbosityInfo,
	OutputStorage: VerbosityInfo,

	OutputTiming: VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputStages: VerbosityTrace,
}

var categoryNames = map[OutputCategory]string{
	OutputResults:    "results",
	OutputErrors:     "errors",
	OutputUserStatus: "status",
	OutputStartup:    "startup",
	OutputStorage:    "storage",
	OutputTiming:     "timing",
	OutputConfig:     "config",
	OutputStages:     "stages",
}

// ShouldOutput reports whether category is shown at verbosity. Unknown
// categories need trace verbosity.
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
