package fred

// --- FRED Observations ---

type fredObservationsResponse struct {
	ObservationStart string            `json:"observation_start"`
	ObservationEnd   string            `json:"observation_end"`
	Units            string            `json:"units"`
	SortOrder        string            `json:"sort_order"`
	Count            int               `json:"count"`
	Limit            int               `json:"limit"`
	Observations     []fredObservation `json:"observations"`
	ErrorCode        int               `json:"error_code"`
	ErrorMessage     string            `json:"error_message"`
}

func (r *fredObservationsResponse) apiError() string { return r.ErrorMessage }

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// missingValue is how FRED marks an observation with no data.
const missingValue = "."
