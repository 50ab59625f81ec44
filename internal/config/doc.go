// Package config defines the YAML-backed settings shared by all
// chromesnap commands and the layout of the base directory.
package config
