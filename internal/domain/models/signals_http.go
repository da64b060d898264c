package models

// Requests for the signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Level string `query:"level" json:"level" default:"" validate:"omitempty,oneof=N1 N2 N3 N3C N_LITE_N1 N_LITE_N2 N_LITE_N3"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type DiagnosticsRequest struct {
	Symbol string `query:"symbol" json:"symbol" default:"" validate:"omitempty,max=64"`
	Asset  string `query:"asset" json:"asset" default:"" validate:"omitempty,oneof=eq crypto"`
}

type RunRequest struct {
	// Wait blocks until the run finishes and returns its result; the default
	// fires the run in the background and returns immediately.
	Wait bool `query:"wait" json:"wait" default:"false"`
}
