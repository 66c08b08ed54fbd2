package lang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

import (
	"errors"
	"fmt"
)

// Provisioning proceeds in stages; a ProvisionError names the stage it
// occurred in.
const (
	StageResolve = "resolve" // finding out where the grammar lives
	StageFetch   = "fetch"   // acquiring the grammar sources
	StageBuild   = "build"   // compiling the parser artifact
	StageLoad    = "load"    // connecting a parser implementation
)

// Causes wrapped into ProvisionError; test for them with errors.Is.
var (
	// ErrUnknownLanguage flags a language name which is empty or ill-formed.
	ErrUnknownLanguage = errors.New("unknown or ill-formed language name")
	// ErrNoProvider flags a language without a registered parser provider.
	ErrNoProvider = errors.New("no parser provider for language")
	// ErrNoSourceLocation flags a grammar with neither a repository nor an
	// archive to fetch from.
	ErrNoSourceLocation = errors.New("grammar has no source location")
)

// ProvisionError is the error type for failures to make a language
// available, e.g. network failures, a missing build toolchain, or an
// unsupported language name. The traversal machinery never inspects or
// reinterprets these; they surface to the caller of the provisioning
// operation unchanged.
type ProvisionError struct {
	Lang  string // name of the language being provisioned
	Stage string // one of the Stage… constants
	Err   error  // underlying cause
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning %q: %s: %v", e.Lang, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

func provisionError(lang string, stage string, err error) *ProvisionError {
	return &ProvisionError{Lang: lang, Stage: stage, Err: err}
}
