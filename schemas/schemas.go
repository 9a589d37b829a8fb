// Package schemas embeds the JSON Schemas for fitscore request and profile documents.
package schemas

import "embed"

// Schema names, without the .schema.json suffix
const (
	Common           = "common"
	EntityProfile    = "entity_profile"
	LeadProfile      = "lead_profile"
	History          = "history"
	MatchRequest     = "match_request"
	BatchRequest     = "batch_request"
	LeadBatch        = "lead_batch"
	CalibrateRequest = "calibrate_request"
	OutcomeRequest   = "outcome_request"
)

// FS holds every *.schema.json file
//
//go:embed *.schema.json
var FS embed.FS

// FileName returns the file holding the named schema
func FileName(name string) string {
	return name + ".schema.json"
}
