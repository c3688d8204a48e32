package result

import "fmt"

// Level is the severity field of a Code.
type Level uint8

const (
	LevelSuccess      Level = 0
	LevelInfo         Level = 1
	LevelStatus       Level = 25
	LevelTemporary    Level = 26
	LevelPermanent    Level = 27
	LevelUsage        Level = 28
	LevelReinitialize Level = 29
	LevelReset        Level = 30
	LevelFatal        Level = 31
)

var levelNames = map[Level]string{
	LevelSuccess:      "success",
	LevelInfo:         "info",
	LevelStatus:       "status",
	LevelTemporary:    "temporary",
	LevelPermanent:    "permanent",
	LevelUsage:        "usage",
	LevelReinitialize: "reinitialize",
	LevelReset:        "reset",
	LevelFatal:        "fatal",
}

func (l Level) String() string { return lookup(levelNames, l, uint32(l)) }

// Summary classifies the failure category.
type Summary uint8

const (
	SummarySuccess         Summary = 0
	SummaryNothingHappened Summary = 1
	SummaryWouldBlock      Summary = 2
	SummaryOutOfResource   Summary = 3
	SummaryNotFound        Summary = 4
	SummaryInvalidState    Summary = 5
	SummaryNotSupported    Summary = 6
	SummaryInvalidArgument Summary = 7
	SummaryWrongArgument   Summary = 8
	SummaryCanceled        Summary = 9
	SummaryStatusChanged   Summary = 10
	SummaryInternal        Summary = 11
	SummaryInvalidResult   Summary = 63
)

var summaryNames = map[Summary]string{
	SummarySuccess:         "success",
	SummaryNothingHappened: "nothing-happened",
	SummaryWouldBlock:      "would-block",
	SummaryOutOfResource:   "out-of-resource",
	SummaryNotFound:        "not-found",
	SummaryInvalidState:    "invalid-state",
	SummaryNotSupported:    "not-supported",
	SummaryInvalidArgument: "invalid-argument",
	SummaryWrongArgument:   "wrong-argument",
	SummaryCanceled:        "canceled",
	SummaryStatusChanged:   "status-changed",
	SummaryInternal:        "internal",
	SummaryInvalidResult:   "invalid-result-value",
}

func (s Summary) String() string { return lookup(summaryNames, s, uint32(s)) }

// Module identifies the component that produced the code.
type Module uint8

const (
	ModuleCommon      Module = 0
	ModuleKernel      Module = 1
	ModuleUtil        Module = 2
	ModuleFileServer  Module = 3
	ModuleLoader      Module = 4
	ModuleOS          Module = 6
	ModuleFS          Module = 17
	ModuleHID         Module = 19
	ModulePM          Module = 22
	ModuleSRV         Module = 25
	ModuleLDR         Module = 29
	ModuleAM          Module = 32
	ModuleNS          Module = 73
	ModuleApplication Module = 254
	ModuleInvalid     Module = 255
)

var moduleNames = map[Module]string{
	ModuleCommon:      "common",
	ModuleKernel:      "kernel",
	ModuleUtil:        "util",
	ModuleFileServer:  "file-server",
	ModuleLoader:      "loader-server",
	ModuleOS:          "os",
	ModuleFS:          "fs",
	ModuleHID:         "hid",
	ModulePM:          "pm",
	ModuleSRV:         "srv",
	ModuleLDR:         "ldr",
	ModuleAM:          "am",
	ModuleNS:          "ns",
	ModuleApplication: "application",
	ModuleInvalid:     "invalid-result-value",
}

func (m Module) String() string { return lookup(moduleNames, m, uint32(m)) }

// Description is the module-specific detail field.
type Description uint16

const (
	DescriptionSuccess            Description = 0
	DescriptionInvalidCommand     Description = 47
	DescriptionInvalidSelection   Description = 1000
	DescriptionTooLarge           Description = 1001
	DescriptionNotAuthorized      Description = 1002
	DescriptionAlreadyDone        Description = 1003
	DescriptionInvalidSize        Description = 1004
	DescriptionInvalidEnumValue   Description = 1005
	DescriptionInvalidCombination Description = 1006
	DescriptionNoData             Description = 1007
	DescriptionBusy               Description = 1008
	DescriptionMisalignedAddress  Description = 1009
	DescriptionMisalignedSize     Description = 1010
	DescriptionOutOfMemory        Description = 1011
	DescriptionNotImplemented     Description = 1012
	DescriptionInvalidAddress     Description = 1013
	DescriptionInvalidPointer     Description = 1014
	DescriptionInvalidHandle      Description = 1015
	DescriptionNotInitialized     Description = 1016
	DescriptionAlreadyInitialized Description = 1017
	DescriptionNotFound           Description = 1018
	DescriptionCancelRequested    Description = 1019
	DescriptionAlreadyExists      Description = 1020
	DescriptionOutOfRange         Description = 1021
	DescriptionTimeout            Description = 1022
	DescriptionInvalidResult      Description = 1023
)

var descriptionNames = map[Description]string{
	DescriptionSuccess:            "success",
	DescriptionInvalidCommand:     "invalid-command-header",
	DescriptionInvalidSelection:   "invalid-selection",
	DescriptionTooLarge:           "too-large",
	DescriptionNotAuthorized:      "not-authorized",
	DescriptionAlreadyDone:        "already-done",
	DescriptionInvalidSize:        "invalid-size",
	DescriptionInvalidEnumValue:   "invalid-enum-value",
	DescriptionInvalidCombination: "invalid-combination",
	DescriptionNoData:             "no-data",
	DescriptionBusy:               "busy",
	DescriptionMisalignedAddress:  "misaligned-address",
	DescriptionMisalignedSize:     "misaligned-size",
	DescriptionOutOfMemory:        "out-of-memory",
	DescriptionNotImplemented:     "not-implemented",
	DescriptionInvalidAddress:     "invalid-address",
	DescriptionInvalidPointer:     "invalid-pointer",
	DescriptionInvalidHandle:      "invalid-handle",
	DescriptionNotInitialized:     "not-initialized",
	DescriptionAlreadyInitialized: "already-initialized",
	DescriptionNotFound:           "not-found",
	DescriptionCancelRequested:    "cancel-requested",
	DescriptionAlreadyExists:      "already-exists",
	DescriptionOutOfRange:         "out-of-range",
	DescriptionTimeout:            "timeout",
	DescriptionInvalidResult:      "invalid-result-value",
}

func (d Description) String() string { return lookup(descriptionNames, d, uint32(d)) }

func lookup[K comparable](names map[K]string, k K, raw uint32) string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("%d", raw)
}

// Well-known codes reported by the kernel.
var (
	// InvalidHandle is what the kernel reports when a request is sent over a
	// handle that is not in the caller's table.
	InvalidHandle = MakeResult(LevelPermanent, SummaryInvalidArgument, ModuleKernel, DescriptionInvalidHandle)

	// InvalidCommandHeader is returned when the header's word counts do not
	// match what the callee expects for the command.
	InvalidCommandHeader = MakeResult(LevelPermanent, SummaryWrongArgument, ModuleOS, DescriptionInvalidCommand)

	// SessionNotFound is returned by a session steal when no client session
	// to the named service exists.
	SessionNotFound = MakeResult(LevelPermanent, SummaryNotFound, ModuleKernel, DescriptionNotFound)

	// OutOfHandles is returned when the caller's handle table is full.
	OutOfHandles = MakeResult(LevelPermanent, SummaryOutOfResource, ModuleKernel, DescriptionOutOfMemory)
)
