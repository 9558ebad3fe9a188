package models

import "errors"

// Application-wide standard errors
var (
	// Project & story map errors
	ErrProjectNotLoaded = errors.New("no project is loaded")
	ErrNodeNotFound     = errors.New("story node not found")
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrDuplicateChoice  = errors.New("choice with this id already exists in the node")
	ErrInvalidProject   = errors.New("invalid project file")

	// General request errors
	ErrInvalidInput = errors.New("invalid input data")
	ErrBadRequest   = errors.New("bad request")

	// Sandbox input validation
	ErrReservedName        = errors.New("player variable uses a reserved sandbox name")
	ErrIdentifierCollision = errors.New("choice identifiers collide after mangling")

	// Script failure kinds, matched with errors.Is against *ScriptError
	ErrScriptSyntax   = errors.New("script syntax error")
	ErrScriptRuntime  = errors.New("script runtime error")
	ErrScriptTimeout  = errors.New("script exceeded its time budget")
	ErrScriptCanceled = errors.New("script execution canceled")
	ErrScriptHost     = errors.New("script host failure")
)
