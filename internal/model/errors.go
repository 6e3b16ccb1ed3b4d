package model

import (
	"fmt"
	"strings"
)

// ParseError reports an OSM payload that could not be parsed.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse osm payload: %s: %v", e.Reason, e.Err)
	}
	return "parse osm payload: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NodeNotFoundError reports that an OSM node could not be retrieved. Missing
// nodes, non-success statuses, timeouts and transport failures all end here.
type NodeNotFoundError struct {
	NodeID     int64
	StatusCode int
	// Transient is set when the failure looks temporary and a later attempt may succeed.
	Transient bool
	Err       error
}

func (e *NodeNotFoundError) Error() string {
	msg := fmt.Sprintf("osm node %d not found", e.NodeID)
	switch {
	case e.StatusCode != 0:
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NodeNotFoundError) Unwrap() error {
	return e.Err
}

// MissingFieldsError lists every required field an OSM node lacks, in check order.
type MissingFieldsError struct {
	NodeID int64
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("osm node %d is missing required fields: %s", e.NodeID, strings.Join(e.Fields, ", "))
}

// DuplicateNameError reports a POS name that is already taken by another POS.
type DuplicateNameError struct {
	Name string
	Err  error
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("pos with name %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return e.Err
}

// PosNotFoundError reports a lookup by id that matched nothing.
type PosNotFoundError struct {
	ID string
}

func (e *PosNotFoundError) Error() string {
	return "pos not found: " + e.ID
}

// InvalidPosError reports a POS that cannot be stored as given.
type InvalidPosError struct {
	Field  string
	Reason string
}

func (e *InvalidPosError) Error() string {
	return fmt.Sprintf("invalid pos: %s %s", e.Field, e.Reason)
}
