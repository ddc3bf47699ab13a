package engine

import (
	"errors"
	"fmt"
)

// Code is a native engine status code. Zero means no error; everything
// else maps onto the engine's documented error table.
type Code int32

const (
	NoError                   Code = 0
	Unknown                   Code = -65537
	NoSuchName                Code = -65538
	NoMemory                  Code = -65539
	BadParam                  Code = -65540
	BadReference              Code = -65541
	BadState                  Code = -65542
	BadFlags                  Code = -65543
	Unsupported               Code = -65544
	NotInitialized            Code = -65545
	NoCache                   Code = -65546
	AlreadyRegistered         Code = -65547
	NameConflict              Code = -65548
	Invalid                   Code = -65549
	Firewall                  Code = -65550
	Incompatible              Code = -65551
	BadInterfaceIndex         Code = -65552
	Refused                   Code = -65553
	NoSuchRecord              Code = -65554
	NoAuth                    Code = -65555
	NoSuchKey                 Code = -65556
	NATTraversal              Code = -65557
	DoubleNAT                 Code = -65558
	BadTime                   Code = -65559
	BadSig                    Code = -65560
	BadKey                    Code = -65561
	Transient                 Code = -65562
	ServiceNotRunning         Code = -65563
	NATPortMappingUnsupported Code = -65564
	NATPortMappingDisabled    Code = -65565
	NoRouter                  Code = -65566
	PollingMode               Code = -65567
	Timeout                   Code = -65568
)

var codeNames = map[Code]string{
	NoError:                   "no error",
	Unknown:                   "unknown error",
	NoSuchName:                "no such name",
	NoMemory:                  "out of memory",
	BadParam:                  "bad parameter",
	BadReference:              "bad reference",
	BadState:                  "bad state",
	BadFlags:                  "bad flags",
	Unsupported:               "not supported",
	NotInitialized:            "not initialized",
	NoCache:                   "no cache",
	AlreadyRegistered:         "already registered",
	NameConflict:              "name conflict",
	Invalid:                   "invalid",
	Firewall:                  "firewall",
	Incompatible:              "client library incompatible with daemon",
	BadInterfaceIndex:         "bad interface index",
	Refused:                   "refused",
	NoSuchRecord:              "no such record",
	NoAuth:                    "no auth",
	NoSuchKey:                 "no such key",
	NATTraversal:              "NAT traversal failed",
	DoubleNAT:                 "double NAT",
	BadTime:                   "bad time",
	BadSig:                    "bad signature",
	BadKey:                    "bad key",
	Transient:                 "transient error",
	ServiceNotRunning:         "background daemon not running",
	NATPortMappingUnsupported: "NAT port mapping not supported",
	NATPortMappingDisabled:    "NAT port mapping disabled",
	NoRouter:                  "no router",
	PollingMode:               "polling mode",
	Timeout:                   "timeout",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown error code %d", int32(c))
}

// Error is a status reported by the native engine, surfaced verbatim
// as an operation's terminal result.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("dnssd engine: %s", e.Code)
}

// Err converts a native status code to an error: nil for NoError, a
// *Error otherwise.
func Err(code Code) error {
	if code == NoError {
		return nil
	}
	return &Error{Code: code}
}

// CodeOf extracts the native code from an error produced by Err.
// Returns Unknown for foreign errors and NoError for nil.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}
