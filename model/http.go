package model

// ConvertResponse is the JSON body returned by POST /convert-midi. Notes is
// the legacy flat list; the remaining fields are the extended shape.
type ConvertResponse struct {
	Resolution     uint16          `json:"resolution"`
	Notes          []Note          `json:"notes"`
	Instruments    []Instrument    `json:"instruments"`
	TempoChanges   []TempoChange   `json:"tempo_changes"`
	TimeSignatures []TimeSignature `json:"time_signatures"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// GenerateRequestBody accepts either the legacy flat shape or the extended
// shape. When Instruments is present the flat Notes list is ignored.
type GenerateRequestBody struct {
	Resolution     uint16          `json:"resolution"`
	Notes          []Note          `json:"notes"`
	Instruments    []Instrument    `json:"instruments"`
	TempoChanges   []TempoChange   `json:"tempo_changes"`
	TimeSignatures []TimeSignature `json:"time_signatures"`
}

// ConvertRequestBody is the JSON alternative to a multipart upload.
type ConvertRequestBody struct {
	Data string `json:"data"`
}

// GenerateBase64Response is returned by /generate-midi?format=base64.
type GenerateBase64Response struct {
	Data string `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
