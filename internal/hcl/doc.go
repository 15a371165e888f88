// Package hcl provides the HCL implementation of config.Loader. It parses
// description files, decodes their blocks with gohcl and translates
// attribute expressions into value.Value without evaluating references:
// a bare `engine` stays an identifier, `raw("...")` becomes a raw fragment.
package hcl
