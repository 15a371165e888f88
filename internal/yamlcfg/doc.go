// Package yamlcfg loads run-script descriptions written in YAML.
//
// The document mirrors the HCL layout: `cvs`, `states` and `volumes` are
// lists of objects with a `name` key, and free-form argument mappings keep the
// order they were written in. Three local tags mark values that are not plain
// data:
//
//	engine: !ref engine             # emitted as a bare name
//	f: !raw "lambda s: s.xyz[0][0]" # emitted verbatim
//	lambda_min: !inf -              # float('-inf'); `!inf` alone is +inf
//
// YAML's own `.inf` and `-.inf` are accepted wherever a bound is expected.
package yamlcfg
