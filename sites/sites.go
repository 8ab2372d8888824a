// Package sites assembles the registry of site-specific content sources.
package sites

import (
	"github.com/mrjoshuak/getbook/parser"
	"github.com/mrjoshuak/getbook/sites/github"
)

// NewRegistry returns a registry with every built-in site adapter.
func NewRegistry() *parser.Registry {
	reg := parser.NewRegistry()
	github.Register(reg)
	return reg
}
