// Package document defines the typed clipse configuration model and its
// JSON/YAML loader.
//
// # Overview
//
// A clipse document describes a command-line interface declaratively:
// noun-like objects, verb-like actions, and the options, positionals and
// constraints attached to them. The document package covers the passive
// half of the system: reading a raw JSON or YAML tree from disk, locating
// the file via the discovery rules, and decoding a resolved tree into the
// typed model used by the validation stages.
//
// # Components
//
// Document and its nested types mirror the wire format. Two declarations
// accept a short and a structured form and carry custom unmarshalers:
//
//   - TypeSpec decodes from "string" or {kind: list, of: string}
//   - EnvBinding decodes from "MY_VAR" or {var: MY_VAR, override_cli: true}
//
// Load/LoadReader parse raw trees (extension-driven with content
// sniffing), Discover applies the config-path discovery order, and Decode
// turns an already-resolved raw tree into a *Document, running
// go-playground/validator struct-tag checks over every field declaration.
//
// Resolution itself (references, variables, precedence, constraint
// checking) lives in the resolver package.
package document
