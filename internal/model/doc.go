// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the format-agnostic definitions extracted from
// declarations: custom objects with their coerced attributes, and rules
// with their kind and argument signature.
//
// # Core Concepts
//
//   - CustomObjectDefinition: a named bag of typed attribute values. Unset
//     attributes never appear in it.
//
//   - RuleDefinition: an invocable rule bound to the class that implements
//     it. It carries exactly one RuleKind from the host catalog and an
//     ordered signature of input and return arguments.
//
// Definitions are produced by the extractor, checked by the validator and
// rendered by the synthesizer. Nothing in this package parses or writes
// files.
package model
