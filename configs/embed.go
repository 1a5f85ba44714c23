// Package configs provides the embedded configuration template for rankfuse.
//
// The template is embedded at build time using Go's //go:embed directive so
// it is available in all distributions: source builds, binary releases, and
// package-manager installs.
//
// It is used by:
//   - cmd/rankfuse/cmd/config.go → `rankfuse config init` creates .rankfuse.yaml
//     (or the user config at ~/.config/rankfuse/config.yaml with --user)
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/rankfuse/config.yaml)
//  3. Project config (.rankfuse.yaml)
//  4. Environment variables (RANKFUSE_*)
//
// To modify the template, edit rankfuse.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the commented starter configuration written by
// `rankfuse config init`. The same template serves project and user scope;
// only the destination path differs.
//
//go:embed rankfuse.example.yaml
var ConfigTemplate string
