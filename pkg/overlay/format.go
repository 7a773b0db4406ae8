package overlay

import "github.com/aretw0/tracker/pkg/core"

// FormatMeta, FormatCounts and FormatPercent are the dashboard string helpers,
// re-exported for callers that only import this package.
var (
	FormatMeta    = core.FormatMeta
	FormatCounts  = core.FormatCounts
	FormatPercent = core.FormatPercent
)
