package irep

import _ "embed"

// Version is the release of the library and the irep command.
//
//go:embed VERSION
var Version string
