// Package errcat holds the canonical error-message strings produced by the
// core engine (spec §6.4). Every message here must match exactly, since
// host code and tests match on message text rather than an error code.
package errcat

import "fmt"

const (
	msgWrongArgs        = "wrong # args: should be %q"
	msgWrongOperands    = "wrong # operands: should be %q"
	msgUnknownSubcmd    = "unknown subcommand %q"
	msgInvalidSubcmd    = "invalid subcommand name"
	msgInvalidCmdName   = "invalid command name %q"
	msgInvalidMethod    = "invalid method name %q"
	msgCannotResolve    = "cannot resolve variable %q"
	msgCannotResolveCmd = "cannot resolve command %q"
	msgCannotGet        = "cannot get %q: no such variable"
	msgCannotRedefine   = "cannot redefine constant %q"
	msgCannotDefineVar  = "cannot define constant %q: variable already exists"
	msgBodyMustBeScript = "body must be a script"
	msgBodyMustBeSOrT   = "body must be a script or tuple"
	msgInvalidBoolean   = "invalid boolean %q"
	msgInvalidInteger   = "invalid integer %q"
	msgInvalidNumber    = "invalid number %q"
	msgIndexOutOfRange  = "index out of range %q"
	msgEmptySelector    = "empty selector"
	msgInvalidIndex     = "invalid index"
	msgNoStringForm     = "value has no string representation"
	msgUnexpectedReturn = "unexpected return"
	msgUnexpectedYield  = "unexpected yield"
	msgUnexpectedBreak  = "unexpected break"
	msgUnexpectedCont   = "unexpected continue"
	msgUnexpectedPass   = "unexpected pass"

	// MsgCircularImports is surfaced by a module loader host (spec §6.3); the
	// engine itself never produces it, but the catalog keeps the literal
	// alongside the others so embedders don't have to invent their own.
	MsgCircularImports = "circular imports are forbidden"
)

func WrongArgs(usage string) string      { return fmt.Sprintf(msgWrongArgs, usage) }
func WrongOperands(usage string) string   { return fmt.Sprintf(msgWrongOperands, usage) }
func UnknownSubcommand(name string) string { return fmt.Sprintf(msgUnknownSubcmd, name) }
func InvalidSubcommandName() string       { return msgInvalidSubcmd }
func InvalidCommandName(name string) string { return fmt.Sprintf(msgInvalidCmdName, name) }
func InvalidMethodName(name string) string { return fmt.Sprintf(msgInvalidMethod, name) }
func CannotResolveVariable(name string) string { return fmt.Sprintf(msgCannotResolve, name) }
func CannotResolveCommand(name string) string { return fmt.Sprintf(msgCannotResolveCmd, name) }
func CannotGetVariable(name string) string { return fmt.Sprintf(msgCannotGet, name) }
func CannotRedefineConstant(name string) string { return fmt.Sprintf(msgCannotRedefine, name) }
func CannotDefineConstant(name string) string { return fmt.Sprintf(msgCannotDefineVar, name) }
func BodyMustBeScript() string            { return msgBodyMustBeScript }
func BodyMustBeScriptOrTuple() string     { return msgBodyMustBeSOrT }
func InvalidBoolean(s string) string      { return fmt.Sprintf(msgInvalidBoolean, s) }
func InvalidInteger(s string) string      { return fmt.Sprintf(msgInvalidInteger, s) }
func InvalidNumber(s string) string       { return fmt.Sprintf(msgInvalidNumber, s) }
func IndexOutOfRange(i string) string     { return fmt.Sprintf(msgIndexOutOfRange, i) }
func EmptySelector() string               { return msgEmptySelector }
func InvalidIndex() string                { return msgInvalidIndex }
func NoStringRepresentation() string      { return msgNoStringForm }
func UnexpectedReturn() string            { return msgUnexpectedReturn }
func UnexpectedYield() string             { return msgUnexpectedYield }
func UnexpectedBreak() string             { return msgUnexpectedBreak }
func UnexpectedContinue() string          { return msgUnexpectedCont }
func UnexpectedPass() string              { return msgUnexpectedPass }
