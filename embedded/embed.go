// Package embedded provides the plugin hooks manifest compiled into the
// conductor binary.
package embedded

import _ "embed"

// HooksJSON contains the raw hooks.json manifest.
//
//go:embed hooks/hooks.json
var HooksJSON []byte
